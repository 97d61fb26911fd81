package tables

// Point is the payload of the point table (§3, §4.8): a nomap holding
// nothing but a 32-byte transaction hash. Its link serves double duty as
// the "stub" the spend table buckets on (archive.StubOf truncates it).
type Point struct {
	Hash [32]byte
}

const PointSize = 32

func (p Point) Encode(dst []byte) {
	_ = dst[:PointSize]
	copy(dst, p.Hash[:])
}

func DecodePoint(src []byte) Point {
	_ = src[:PointSize]
	var p Point
	copy(p.Hash[:], src)
	return p
}
