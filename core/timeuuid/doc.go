// Package timeuuid builds time-ordered identifiers field by field and reads the
// timestamp back out of them.
//
// The layout follows RFC 4122: the most significant half carries the timestamp
// split into time_low, time_mid and time_hi plus the 4-bit version; the least
// significant half carries the variant, a 14-bit clock sequence and a 48-bit node.
//
//	id, err := timeuuid.New().
//	    Version(1).
//	    TimestampMillis(time.Now().UnixMilli()).
//	    ClockSequence(42).
//	    Node(0x0123456789ab).
//	    Build()
//
//	ms := timeuuid.TimestampMillis(id)
package timeuuid
