// Package gate models the controller of an automated car-park barrier.
//
// The controller is a four-phase state machine clocked by a simulation engine.
// A vehicle arriving at the entrance moves the gate from IDLE to WAIT_CODE.
// After a configurable dwell window the entered access code is compared with
// the secret: a match opens the barrier (ACCEPTED), a mismatch lights the deny
// indicator (REJECTED) and re-arms the window until a correct code is entered.
// The barrier closes again when the vehicle passes the exit sensor.
//
// The registers (phase and dwell counter) are updated in two phases. Each tick
// computes the next registers from a snapshot of the current ones and the
// sampled inputs, then commits them at once. Outputs are decoded from the
// committed registers and never cached.
//
// Use Builder to create a Comp that runs on a sim.Engine, or NewController to
// step the state machine directly.
package gate
