// Package xmputil wraps and unwraps XMP data in its xpacket envelope.
// The XMP itself is treated as an opaque string with a root <rdf:RDF>
// element; nothing here parses RDF.
package xmputil

import "strings"

const (
	packetHeader = `<?xpacket begin="` + "\uFEFF" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>`
	packetTrailer = `<?xpacket end="r"?>`
	metaOpen      = `<x:xmpmeta xmlns:x="adobe:ns:meta/">`
	metaClose     = `</x:xmpmeta>`
)

// WrapInXPacket wraps an XMP string with a root <rdf:RDF> element in an
// xpacket envelope suitable for embedding in a file.
func WrapInXPacket(xmp string) string {
	var b strings.Builder
	b.Grow(len(packetHeader) + len(metaOpen) + len(xmp) + len(metaClose) + len(packetTrailer))
	b.WriteString(packetHeader)
	b.WriteString(metaOpen)
	b.WriteString(xmp)
	b.WriteString(metaClose)
	b.WriteString(packetTrailer)
	return b.String()
}

// TrimXPacket strips the xpacket envelope and xmpmeta wrapper, if
// present, returning the inner XMP. Input without an envelope is
// returned unchanged apart from whitespace trimming.
func TrimXPacket(packet string) string {
	s := packet
	if i := strings.Index(s, "?>"); i >= 0 && strings.HasPrefix(strings.TrimSpace(s), "<?xpacket") {
		s = s[i+2:]
	}
	if i := strings.LastIndex(s, "<?xpacket"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ">"); i >= 0 && strings.Contains(s[:i+1], "xmpmeta") {
		s = s[i+1:]
		if j := strings.LastIndex(s, metaClose); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}
