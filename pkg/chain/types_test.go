package chain

import "testing"

var (
	_ Header      = SimpleHeader{}
	_ Transaction = SimpleTransaction{}
	_ Input       = SimpleInput{}
	_ Output      = SimpleOutput{}
)

func TestSimpleHeaderFields(t *testing.T) {
	h := SimpleHeader{
		HashValue:       Hash{1},
		PreviousHash:    Hash{2},
		VersionValue:    1,
		TimestampValue:  100,
		BitsValue:       0x1d00ffff,
		NonceValue:      42,
		MerkleRootValue: Hash{3},
	}
	if h.Hash() != (Hash{1}) {
		t.Fatalf("Hash() = %v", h.Hash())
	}
	if h.PreviousBlockHash() != (Hash{2}) {
		t.Fatalf("PreviousBlockHash() = %v", h.PreviousBlockHash())
	}
	if h.Version() != 1 || h.Timestamp() != 100 || h.Nonce() != 42 {
		t.Fatalf("unexpected scalar fields: %+v", h)
	}
	if h.MerkleRoot() != (Hash{3}) {
		t.Fatalf("MerkleRoot() = %v", h.MerkleRoot())
	}
}

func TestSimpleTransactionCoinbaseHasNullIndexInput(t *testing.T) {
	tx := SimpleTransaction{
		HashValue:     Hash{0xC0},
		CoinbaseValue: true,
		InputsValue: []Input{SimpleInput{
			PreviousOutputValue: Point{Index: NullIndex},
		}},
		OutputsValue: []Output{SimpleOutput{ValueValue: 5000}},
	}
	if !tx.IsCoinbase() {
		t.Fatal("expected coinbase")
	}
	if got := tx.Inputs()[0].PreviousOutput().Index; got != NullIndex {
		t.Fatalf("coinbase placeholder index = %d, want NullIndex", got)
	}
	if got := tx.Outputs()[0].Value(); got != 5000 {
		t.Fatalf("output value = %d", got)
	}
}

func TestSimpleInputOutputAccessors(t *testing.T) {
	in := SimpleInput{
		PreviousOutputValue: Point{Hash: Hash{9}, Index: 3},
		SequenceValue:       0xfffffffe,
		ScriptValue:         []byte{0x01, 0x02},
		WitnessValue:        [][]byte{{0x03}},
	}
	if in.PreviousOutput() != (Point{Hash: Hash{9}, Index: 3}) {
		t.Fatalf("PreviousOutput() = %v", in.PreviousOutput())
	}
	if in.Sequence() != 0xfffffffe {
		t.Fatalf("Sequence() = %x", in.Sequence())
	}
	if len(in.Script()) != 2 || len(in.Witness()) != 1 {
		t.Fatalf("script/witness mismatch: %+v", in)
	}

	out := SimpleOutput{ValueValue: 100, ScriptValue: []byte{0xAA}}
	if out.Value() != 100 || len(out.Script()) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
}
