package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/blkarchive/archive/internal/filelock"
	"github.com/blkarchive/archive/internal/mmapio"
)

// State is one of the store lifecycle states of §4.9.
type State int

const (
	StateClosed State = iota
	StateCreated
	StateOpen
	StateFaulted
)

const (
	flushLockName   = "flush.lock"
	processLockName = "process.lock"
	indexDirName    = "index"
	backupDirName   = ".backup"
)

// Store is the top-level handle on one archive directory: every table's
// head and body files, the process lock, and the transactor (§4.9,
// §5, §6).
type Store struct {
	root     string
	settings Settings
	state    State

	locker      *filelock.Locker
	processLock *filelock.Lock
	transactor  *Transactor

	header      *tableHandle
	tx          *tableHandle
	point       *tableHandle
	puts        *tableHandle
	outs        *tableHandle
	output      *tableHandle
	input       *tableHandle
	ins         *tableHandle
	spend       *tableHandle
	txs         *tableHandle
	candidate   *tableHandle
	confirmed   *tableHandle
	strongTx    *tableHandle
	duplicate   *tableHandle
	prevout     *tableHandle
	validatedBk *tableHandle
	validatedTx *tableHandle
	filterBk    *tableHandle
	filterTx    *tableHandle
	address     *tableHandle

	Header      *HashMap
	Tx          *HashMap
	Point       *NoMap
	Puts        *PrefixedSlabNoMap
	Outs        *PrefixedSlabNoMap
	Output      *PrefixedSlabNoMap
	Input       *PrefixedSlabNoMap
	Ins         *NoMap
	Spend       *HashMap
	Txs         *VariableArrayMap
	Candidate   *ArrayMap
	Confirmed   *ArrayMap
	StrongTx    *HashMap
	Duplicate   *HashMap
	Prevout     *VariableArrayMap
	ValidatedBk *VariableArrayMap
	ValidatedTx *HashMap
	FilterBk    *VariableArrayMap
	FilterTx    *VariableArrayMap
	Address     *HashMap
}

// tableHandle bundles the two files one head+body table owns so Close and
// Flush can iterate them uniformly regardless of table shape.
type tableHandle struct {
	name string
	head *mmapio.File // nil for nomap tables
	body *mmapio.File
}

func bodyPath(root, table string) string {
	return filepath.Join(root, fmt.Sprintf("archive_%s.dat", table))
}

func headPath(root, table string) string {
	return filepath.Join(root, indexDirName, fmt.Sprintf("archive_%s.idx", table))
}

// Create initializes a brand-new store directory: every table's head and
// body file, process lock acquired, then transitions to open (§4.9).
func Create(root string, settings Settings) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create root %s: %w", root, err)
	}
	if err := os.MkdirAll(filepath.Join(root, indexDirName), 0o755); err != nil {
		return nil, fmt.Errorf("archive: create index dir: %w", err)
	}

	for _, name := range allTableNames {
		if _, err := os.Stat(bodyPath(root, name)); err == nil {
			return nil, fmt.Errorf("archive: %s: %w", bodyPath(root, name), os.ErrExist)
		}
	}

	s := &Store{root: root, settings: settings, locker: filelock.NewLocker()}

	lock, err := s.locker.TryLock(filepath.Join(root, processLockName))
	if err != nil {
		return nil, fmt.Errorf("archive: acquiring process lock: %w", err)
	}
	s.processLock = lock
	s.transactor = NewTransactor(s.locker, filepath.Join(root, flushLockName))

	if err := s.openTables(true); err != nil {
		_ = s.processLock.Close()
		return nil, err
	}

	s.state = StateOpen
	return s, nil
}

// Open maps an existing store directory, verifying every head file
// before transitioning to open; any verify failure faults the store
// (§4.9).
func Open(root string, settings Settings) (*Store, error) {
	s := &Store{root: root, settings: settings, locker: filelock.NewLocker()}

	lock, err := s.locker.TryLock(filepath.Join(root, processLockName))
	if err != nil {
		return nil, fmt.Errorf("archive: acquiring process lock: %w", err)
	}
	s.processLock = lock
	s.transactor = NewTransactor(s.locker, filepath.Join(root, flushLockName))

	if err := s.openTables(false); err != nil {
		s.state = StateFaulted
		_ = s.processLock.Close()
		return nil, err
	}

	s.state = StateOpen
	return s, nil
}

var allTableNames = []string{
	"header", "tx", "point", "puts", "outs", "output", "input", "ins",
	"spend", "txs", "candidate", "confirmed", "strong_tx", "duplicate",
	"prevout", "validated_bk", "validated_tx", "filter_bk", "filter_tx", "address",
}

func (s *Store) openTables(create bool) error {
	var err error

	if s.header, s.Header, err = s.openHashTable("header", s.settings.HeaderBuckets, 4, 32, Header32PayloadSize, s.settings.sieve(), create); err != nil {
		return err
	}
	if s.tx, s.Tx, err = s.openHashTable("tx", s.settings.TxBuckets, 4, 32, TxPayloadSize, s.settings.sieve(), create); err != nil {
		return err
	}
	if s.spend, s.Spend, err = s.openHashTable("spend", s.settings.SpendBuckets, 4, 7, SpendPayloadSize, s.settings.sieve(), create); err != nil {
		return err
	}
	if s.strongTx, s.StrongTx, err = s.openHashTable("strong_tx", s.settings.StrongTxBuckets, 4, 4, StrongTxPayloadSize, Sieve{}, create); err != nil {
		return err
	}
	if s.duplicate, s.Duplicate, err = s.openHashTable("duplicate", s.settings.DuplicateBuckets, 4, 32, 0, Sieve{}, create); err != nil {
		return err
	}
	if s.validatedTx, s.ValidatedTx, err = s.openHashTable("validated_tx", s.settings.TxBuckets, 4, 4, ValidatedTxPayloadSize, Sieve{}, create); err != nil {
		return err
	}

	if s.txs, s.Txs, err = s.openVariableArrayTable("txs", 4, create); err != nil {
		return err
	}
	if s.candidate, s.Candidate, err = s.openArrayTable("candidate", 4, CandidatePayloadSize, create); err != nil {
		return err
	}
	if s.confirmed, s.Confirmed, err = s.openArrayTable("confirmed", 4, ConfirmedPayloadSize, create); err != nil {
		return err
	}
	if s.prevout, s.Prevout, err = s.openVariableArrayTable("prevout", 4, create); err != nil {
		return err
	}
	if s.validatedBk, s.ValidatedBk, err = s.openVariableArrayTable("validated_bk", 4, create); err != nil {
		return err
	}

	if s.point, s.Point, err = s.openNoMapTable("point", PointPayloadSize, create); err != nil {
		return err
	}
	if s.ins, s.Ins, err = s.openNoMapTable("ins", InsPayloadSize, create); err != nil {
		return err
	}
	if s.puts, s.Puts, err = s.openSlabTable("puts", create); err != nil {
		return err
	}
	if s.outs, s.Outs, err = s.openSlabTable("outs", create); err != nil {
		return err
	}
	if s.output, s.Output, err = s.openSlabTable("output", create); err != nil {
		return err
	}
	if s.input, s.Input, err = s.openSlabTable("input", create); err != nil {
		return err
	}

	if s.settings.EnableAddressIndex {
		if s.address, s.Address, err = s.openHashTable("address", s.settings.AddressBuckets, 4, 20, AddressPayloadSize, Sieve{}, create); err != nil {
			return err
		}
	}
	if s.settings.EnableFilterIndex {
		if s.filterBk, s.FilterBk, err = s.openVariableArrayTable("filter_bk", 4, create); err != nil {
			return err
		}
		if s.filterTx, s.FilterTx, err = s.openVariableArrayTable("filter_tx", 4, create); err != nil {
			return err
		}
	}

	return nil
}

// Per-table fixed payload widths; openHashTable adds the next-link and
// key widths to these to get a hashmap element's size.
const (
	Header32PayloadSize    = 60
	TxPayloadSize          = 29
	SpendPayloadSize       = 16
	StrongTxPayloadSize    = 4
	ValidatedTxPayloadSize = 17
	PointPayloadSize       = 32
	InsPayloadSize         = 8
	AddressPayloadSize     = 4
	CandidatePayloadSize   = 4
	ConfirmedPayloadSize   = 4
)

func (s *Store) openHashTable(name string, buckets uint64, linkWidth, keySize int, payloadSize int64, sieve Sieve, create bool) (*tableHandle, *HashMap, error) {
	headFile, bodyFile, err := s.openFiles(name, create)
	if err != nil {
		return nil, nil, err
	}

	head := NewHashHead(headFile, buckets, linkWidth, sieve)
	if create {
		if err := head.Create(); err != nil {
			return nil, nil, err
		}
	} else if !head.Verify() {
		return nil, nil, fmt.Errorf("archive: %s: %w", name, ErrCorrupt)
	}

	elementSize := int64(linkWidth) + int64(keySize) + payloadSize
	records := NewRecordManager(bodyFile, elementSize)
	m := NewHashMap(head, records, linkWidth, keySize)

	return &tableHandle{name: name, head: headFile, body: bodyFile}, m, nil
}

func (s *Store) openArrayTable(name string, linkWidth int, elementSize int64, create bool) (*tableHandle, *ArrayMap, error) {
	headFile, bodyFile, err := s.openFiles(name, create)
	if err != nil {
		return nil, nil, err
	}

	head := NewArrayHead(headFile, linkWidth)
	if create {
		if err := head.Create(); err != nil {
			return nil, nil, err
		}
	} else if !head.Verify() {
		return nil, nil, fmt.Errorf("archive: %s: %w", name, ErrCorrupt)
	}

	records := NewRecordManager(bodyFile, elementSize)
	return &tableHandle{name: name, head: headFile, body: bodyFile}, NewArrayMap(head, records), nil
}

// openVariableArrayTable is openArrayTable's analog for arraymap tables
// whose payload has no fixed width (txs, prevout, validated_bk,
// filter_bk, filter_tx): the body is slab- rather than record-managed.
func (s *Store) openVariableArrayTable(name string, linkWidth int, create bool) (*tableHandle, *VariableArrayMap, error) {
	headFile, bodyFile, err := s.openFiles(name, create)
	if err != nil {
		return nil, nil, err
	}

	head := NewArrayHead(headFile, linkWidth)
	if create {
		if err := head.Create(); err != nil {
			return nil, nil, err
		}
	} else if !head.Verify() {
		return nil, nil, fmt.Errorf("archive: %s: %w", name, ErrCorrupt)
	}

	slabs := NewSlabManager(bodyFile)
	return &tableHandle{name: name, head: headFile, body: bodyFile}, NewVariableArrayMap(head, slabs), nil
}

func (s *Store) openNoMapTable(name string, elementSize int64, create bool) (*tableHandle, *NoMap, error) {
	bodyFile, err := s.openBodyFile(name, create)
	if err != nil {
		return nil, nil, err
	}
	records := NewRecordManager(bodyFile, elementSize)
	return &tableHandle{name: name, body: bodyFile}, NewNoMap(records), nil
}

func (s *Store) openSlabTable(name string, create bool) (*tableHandle, *PrefixedSlabNoMap, error) {
	bodyFile, err := s.openBodyFile(name, create)
	if err != nil {
		return nil, nil, err
	}
	return &tableHandle{name: name, body: bodyFile}, NewPrefixedSlabNoMap(NewSlabManager(bodyFile)), nil
}

func (s *Store) openFiles(name string, create bool) (head *mmapio.File, body *mmapio.File, err error) {
	hp, bp := headPath(s.root, name), bodyPath(s.root, name)
	if create {
		head, err = mmapio.Create(hp, s.settings.MinimumBodyBytes)
		if err != nil {
			return nil, nil, err
		}
		body, err = mmapio.Create(bp, s.settings.MinimumBodyBytes)
		if err != nil {
			_ = head.Close()
			return nil, nil, err
		}
		return head, body, nil
	}

	head, err = mmapio.Open(hp)
	if err != nil {
		return nil, nil, err
	}
	body, err = mmapio.Open(bp)
	if err != nil {
		_ = head.Close()
		return nil, nil, err
	}
	return head, body, nil
}

func (s *Store) openBodyFile(name string, create bool) (*mmapio.File, error) {
	bp := bodyPath(s.root, name)
	if create {
		return mmapio.Create(bp, s.settings.MinimumBodyBytes)
	}
	return mmapio.Open(bp)
}

// Flush requests durability of every table's head and body files
// (§4.9).
func (s *Store) Flush() error {
	for _, h := range s.handles() {
		if h.head != nil {
			if err := h.head.Flush(); err != nil {
				return fmt.Errorf("archive: flushing %s head: %w", h.name, err)
			}
		}
		if err := h.body.Flush(); err != nil {
			return fmt.Errorf("archive: flushing %s body: %w", h.name, err)
		}
	}
	return nil
}

// Close flushes every table, then releases the process lock (§4.9).
func (s *Store) Close() error {
	if s.state == StateClosed {
		return nil
	}
	flushErr := s.Flush()

	for _, h := range s.handles() {
		if h.head != nil {
			_ = h.head.Close()
		}
		_ = h.body.Close()
	}

	lockErr := s.processLock.Close()
	s.state = StateClosed

	if flushErr != nil {
		return flushErr
	}
	return lockErr
}

func (s *Store) handles() []*tableHandle {
	all := []*tableHandle{
		s.header, s.tx, s.point, s.puts, s.outs, s.output, s.input, s.ins,
		s.spend, s.txs, s.candidate, s.confirmed, s.strongTx, s.duplicate,
		s.prevout, s.validatedBk, s.validatedTx, s.address, s.filterBk, s.filterTx,
	}
	out := make([]*tableHandle, 0, len(all))
	for _, h := range all {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Backup takes the transactor exclusive, flushes all bodies, and
// atomically snapshots every head file into root/.backup (§4.9).
func (s *Store) Backup() error {
	unlock, err := s.transactor.LockExclusive()
	if err != nil {
		return err
	}
	defer unlock()

	for _, h := range s.handles() {
		if err := h.body.Flush(); err != nil {
			return fmt.Errorf("archive: flushing %s body: %w", h.name, err)
		}
	}

	backupDir := filepath.Join(s.root, backupDirName)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("archive: creating backup dir: %w", err)
	}

	for _, h := range s.handles() {
		if h.head == nil {
			continue
		}
		if err := h.head.Flush(); err != nil {
			return fmt.Errorf("archive: flushing %s head: %w", h.name, err)
		}
		raw, err := h.head.Get(0, h.head.Size())
		if err != nil {
			return fmt.Errorf("archive: reading %s head: %w", h.name, err)
		}
		dst := filepath.Join(backupDir, fmt.Sprintf("archive_%s.idx", h.name))
		if err := atomic.WriteFile(dst, bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("archive: snapshotting %s head: %w", h.name, err)
		}
	}
	return nil
}

// Restore replaces every live head file with its most recent backup and
// reopens the store (§4.9). The store must be closed before calling
// Restore and is left open on success.
func (s *Store) Restore() error {
	backupDir := filepath.Join(s.root, backupDirName)
	if _, err := os.Stat(backupDir); err != nil {
		return fmt.Errorf("archive: %w", ErrMissingBackup)
	}

	for _, name := range allTableNames {
		src := filepath.Join(backupDir, fmt.Sprintf("archive_%s.idx", name))
		if _, err := os.Stat(src); err != nil {
			continue // table was disabled (address/filter) at backup time
		}
		dst := headPath(s.root, name)
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("archive: reading backup %s: %w", name, err)
		}
		if err := atomic.WriteFile(dst, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("archive: restoring %s head: %w", name, err)
		}
	}

	reopened, err := Open(s.root, s.settings)
	if err != nil {
		return err
	}
	*s = *reopened
	return nil
}
