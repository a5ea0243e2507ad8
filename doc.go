/*
Package moccarduino is a deterministic, logical-time simulator for
Arduino-style microcontroller programs.

User code implements Program's Setup and Loop against an Emulator, the
process-wide singleton exposing the pin and serial API surface (pin_mode,
digital_write/read, shift_out/in, millis, delay, ...). A Simulator drives
Setup once and Loop repeatedly, advancing a monotonic microsecond clock;
pin and serial events flow downstream through a small pipeline of
Consumer stages (TimeSeries, FutureStore, Demultiplexer, Aggregator,
LedBank, SerialSegDisplay) that reconstruct stable, human-legible state
out of rapidly multiplexed hardware signals.

*/
package moccarduino
