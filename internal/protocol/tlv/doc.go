// Package tlv reads and writes type-length-value records stored back to back
// in a message buffer.
//
// Wire format:
//
//	short record:    [type:u8][length:u8 (0..254)][value]
//	extended record: [type:u8][0xFF][length:u16 big-endian][value]
//
// Every length read from the buffer is checked against the bytes that remain
// before any value is touched. Decoders either fully succeed or leave their
// output untouched. The encoder only emits the short form.
package tlv
