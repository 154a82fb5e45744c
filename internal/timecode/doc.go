// Package timecode implements SMPTE timecode values for the session frame
// rates switchlog supports, including drop-frame counting at 29.97.
//
// Values are stored as real frame counts since midnight, which makes ordering
// and frame arithmetic exact; drop-frame label skipping only happens at the
// parse/format boundary. Rollover at the drop-frame minute boundary follows
// the SMPTE 12M convention (the first two frame numbers of every minute not
// divisible by ten do not exist). The upstream device protocols do not pin
// this down, so the convention is an assumption of this package rather than
// observed device behavior.
package timecode
