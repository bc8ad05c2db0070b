// Package dps150 implements the serial protocol of DPS-150 bench power supplies.
package dps150

// The host talks to the device with small checksummed frames:
//
//   host -> device: F1 CMD FIELD 01 VALUE SUM          (always 6 bytes)
//   device -> host: F0 CMD FIELD LEN PAYLOAD[LEN] SUM  (LEN+5 bytes)
//
// SUM is the wrapping byte sum of FIELD, LEN and the payload.
// Replies are not correlated with requests, the FIELD byte alone selects
// how a payload is interpreted. The decoder rescans its buffer on every
// feed and resynchronizes one byte at a time, since header bytes may
// legitimately appear inside payload data.
