// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package shields_test

import (
	"testing"

	"github.com/db47h/moccarduino/shields"
	"github.com/db47h/moccarduino/wiring"
)

func TestFunshieldResolves(t *testing.T) {
	roles, err := wiring.ParseAll(shields.Funshield)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]int{
		"latch":   4,
		"clock":   7,
		"data":    8,
		"beep":    3,
		"led0":    13,
		"led3":    10,
		"button0": 15,
		"trimmer": 14,
	}
	for role, want := range cases {
		token, ok := roles[role]
		if !ok {
			t.Fatalf("missing role %q", role)
		}
		got, err := shields.ResolvePin(token)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("role %q: want pin %d, got %d", role, want, got)
		}
	}
}
