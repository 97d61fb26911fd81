// Package chain declares the minimal, read-only view of blocks and
// transactions the archive engine depends on (§3.1). The engine never
// constructs, parses, or validates these values — only reads them —
// so the package exposes small accessor interfaces plus lightweight
// concrete structs a caller can build directly, grounded on the plain
// struct style of rubin-protocol's consensus client types.
package chain

// Hash is a double-SHA256 block or transaction identifier.
type Hash [32]byte

// ShortHash is a RIPEMD160(SHA256(x)) address/script hash.
type ShortHash [20]byte

// Point identifies a previous transaction output by hash and index.
type Point struct {
	Hash  Hash
	Index uint32
}

// NullIndex marks a coinbase input's placeholder previous-output index.
const NullIndex uint32 = 0xFFFFFFFF

// Header is the read-only view of a block header the engine stores and
// indexes.
type Header interface {
	Hash() Hash
	PreviousBlockHash() Hash
	Version() uint32
	Timestamp() uint32
	Bits() uint32
	Nonce() uint32
	MerkleRoot() Hash
}

// Transaction is the read-only view of a transaction the engine stores
// and indexes.
type Transaction interface {
	Hash() Hash
	IsCoinbase() bool
	Version() uint32
	Locktime() uint32
	Inputs() []Input
	Outputs() []Output
	LightSize() uint32 // non-witness serialized size
	HeavySize() uint32 // witness serialized size
}

// Input is the read-only view of a transaction input.
type Input interface {
	PreviousOutput() Point
	Sequence() uint32
	Script() []byte
	Witness() [][]byte
}

// Output is the read-only view of a transaction output.
type Output interface {
	Value() uint64
	Script() []byte
}

// SimpleHeader is a concrete Header backed by plain fields, usable by
// tests and by callers with no richer block type of their own.
type SimpleHeader struct {
	HashValue       Hash
	PreviousHash    Hash
	VersionValue    uint32
	TimestampValue  uint32
	BitsValue       uint32
	NonceValue      uint32
	MerkleRootValue Hash
}

func (h SimpleHeader) Hash() Hash               { return h.HashValue }
func (h SimpleHeader) PreviousBlockHash() Hash  { return h.PreviousHash }
func (h SimpleHeader) Version() uint32          { return h.VersionValue }
func (h SimpleHeader) Timestamp() uint32        { return h.TimestampValue }
func (h SimpleHeader) Bits() uint32             { return h.BitsValue }
func (h SimpleHeader) Nonce() uint32            { return h.NonceValue }
func (h SimpleHeader) MerkleRoot() Hash         { return h.MerkleRootValue }

// SimpleInput is a concrete Input backed by plain fields.
type SimpleInput struct {
	PreviousOutputValue Point
	SequenceValue       uint32
	ScriptValue         []byte
	WitnessValue        [][]byte
}

func (i SimpleInput) PreviousOutput() Point { return i.PreviousOutputValue }
func (i SimpleInput) Sequence() uint32      { return i.SequenceValue }
func (i SimpleInput) Script() []byte        { return i.ScriptValue }
func (i SimpleInput) Witness() [][]byte     { return i.WitnessValue }

// SimpleOutput is a concrete Output backed by plain fields.
type SimpleOutput struct {
	ValueValue  uint64
	ScriptValue []byte
}

func (o SimpleOutput) Value() uint64  { return o.ValueValue }
func (o SimpleOutput) Script() []byte { return o.ScriptValue }

// SimpleTransaction is a concrete Transaction backed by plain fields.
type SimpleTransaction struct {
	HashValue       Hash
	CoinbaseValue   bool
	VersionValue    uint32
	LocktimeValue   uint32
	InputsValue     []Input
	OutputsValue    []Output
	LightSizeValue  uint32
	HeavySizeValue  uint32
}

func (t SimpleTransaction) Hash() Hash           { return t.HashValue }
func (t SimpleTransaction) IsCoinbase() bool     { return t.CoinbaseValue }
func (t SimpleTransaction) Version() uint32      { return t.VersionValue }
func (t SimpleTransaction) Locktime() uint32     { return t.LocktimeValue }
func (t SimpleTransaction) Inputs() []Input      { return t.InputsValue }
func (t SimpleTransaction) Outputs() []Output    { return t.OutputsValue }
func (t SimpleTransaction) LightSize() uint32    { return t.LightSizeValue }
func (t SimpleTransaction) HeavySize() uint32    { return t.HeavySizeValue }
