package parser

// Flatten fans the given packets out to a flat slice: each packet is
// followed depth-first by its Next chain. Nil packets are skipped.
func Flatten(packets ...*Packet) []*Packet {
	var out []*Packet
	for _, p := range packets {
		for ; p != nil; p = p.Next {
			out = append(out, p)
		}
	}
	return out
}

// Peek returns the first packet whose Proto equals proto, walking the
// packets in Flatten order, or nil if none matches.
func Peek(proto Proto, packets ...*Packet) *Packet {
	for _, p := range Flatten(packets...) {
		if p.Proto == proto {
			return p
		}
	}
	return nil
}
