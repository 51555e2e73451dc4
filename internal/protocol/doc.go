// Package protocol implements the wire framing shared by server and client.
//
// A frame is UTF-8 text followed by exactly one zero byte. There is no
// length prefix, header or escaping, and the same framing is used for
// commands sent by clients and results sent back by the server.
package protocol
