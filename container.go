package hashsig

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/nightlyone/lockfile"
)

// PrivateKeyContainer persists a two-level private key's seed, depths
// and next_index counter, and holds an exclusive lock on that state
// for as long as a Signer has it open. The filesystem
// implementation below is the only one shipped, but Signer depends on
// the interface so an alternative backing store could be substituted
// without touching the signing logic.
type PrivateKeyContainer interface {
	Seed() Digest
	DepthTop() uint8
	DepthBot() uint8

	// ReserveNextIndex atomically reads the persisted next_index,
	// checks it against the leaf budget, persists the incremented
	// value, and returns the index to sign at. The new value is
	// durable on disk before this call returns, so a crash
	// immediately afterwards wastes at most the one reserved index.
	ReserveNextIndex(budget uint64) (uint64, Error)

	Close() Error
}

// privateKeyFile is the on-disk JSON representation:
// human-readable, not encrypted -- protection is delegated to
// filesystem permissions, per the Open Question decision recorded in
// DESIGN.md.
type privateKeyFile struct {
	Seed      string `json:"seed"`
	DepthTop  uint8  `json:"depth_top"`
	DepthBot  uint8  `json:"depth_bot"`
	NextIndex uint64 `json:"next_index"`
}

type fsContainer struct {
	path  string
	lock  lockfile.Lockfile
	state privateKeyFile
}

// CreatePrivateKeyContainer writes a brand-new private-key file at
// path, seeded by seed, and returns a container holding the exclusive
// lock on it. It fails if path already exists.
func CreatePrivateKeyContainer(path string, seed Digest, dTop, dBot uint8) (PrivateKeyContainer, Error) {
	if _, err := os.Stat(path); err == nil {
		return nil, errorf(KindIoError, "%s already exists", path)
	}

	lock, lerr := acquireLock(path)
	if lerr != nil {
		return nil, lerr
	}

	c := &fsContainer{
		path: path,
		lock: lock,
		state: privateKeyFile{
			Seed:      hex.EncodeToString(seed[:]),
			DepthTop:  dTop,
			DepthBot:  dBot,
			NextIndex: 0,
		},
	}
	if err := c.persist(); err != nil {
		lock.Unlock()
		return nil, err
	}
	pkgLogger.Logf("hashsig: created private key container at %s", path)
	return c, nil
}

// OpenPrivateKeyContainer loads an existing private-key file at path
// and locks it for exclusive use.
func OpenPrivateKeyContainer(path string) (PrivateKeyContainer, Error) {
	lock, lerr := acquireLock(path)
	if lerr != nil {
		return nil, lerr
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		lock.Unlock()
		return nil, wrapErrorf(KindIoError, err, "reading %s", path)
	}
	var state privateKeyFile
	if err := json.Unmarshal(raw, &state); err != nil {
		lock.Unlock()
		return nil, wrapErrorf(KindIoError, err, "parsing %s", path)
	}
	pkgLogger.Logf("hashsig: opened private key container at %s, next_index=%d", path, state.NextIndex)
	return &fsContainer{path: path, lock: lock, state: state}, nil
}

func acquireLock(path string) (lockfile.Lockfile, Error) {
	abs, err := filepath.Abs(path + ".lock")
	if err != nil {
		return "", wrapErrorf(KindIoError, err, "resolving lock path")
	}
	lock, err := lockfile.New(abs)
	if err != nil {
		return "", wrapErrorf(KindIoError, err, "creating lockfile handle")
	}
	// TryLock hands a lock already owned by this process straight back,
	// so a second container on the same file is refused here.
	if owner, err := lock.GetOwner(); err == nil && owner.Pid == os.Getpid() {
		return "", errorf(KindLockContention, "%s is already locked by this process", path)
	}
	if err := lock.TryLock(); err != nil {
		if te, ok := err.(interface{ Temporary() bool }); ok && te.Temporary() {
			return "", wrapErrorf(KindLockContention, err, "%s is locked by another process", path)
		}
		return "", wrapErrorf(KindLockContention, err, "locking %s", path)
	}
	return lock, nil
}

func (c *fsContainer) Seed() Digest {
	var seed Digest
	raw, _ := hex.DecodeString(c.state.Seed)
	copy(seed[:], raw)
	return seed
}

func (c *fsContainer) DepthTop() uint8 { return c.state.DepthTop }
func (c *fsContainer) DepthBot() uint8 { return c.state.DepthBot }

// persist writes the container's state to c.path via the
// write-temp-file, fsync, rename, fsync-parent-directory sequence: the
// new content is fully durable and atomically visible, or the rename
// never happens and the old content is still intact.
func (c *fsContainer) persist() Error {
	raw, err := json.MarshalIndent(c.state, "", "  ")
	if err != nil {
		return wrapErrorf(KindStatePersistenceFailure, err, "marshaling private key state")
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".hashsig-key-*.tmp")
	if err != nil {
		return wrapErrorf(KindStatePersistenceFailure, err, "creating temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrapErrorf(KindStatePersistenceFailure, err, "writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrapErrorf(KindStatePersistenceFailure, err, "fsync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return wrapErrorf(KindStatePersistenceFailure, err, "closing temp file")
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return wrapErrorf(KindStatePersistenceFailure, err, "renaming temp file into place")
	}

	dirHandle, err := os.Open(dir)
	if err != nil {
		return wrapErrorf(KindStatePersistenceFailure, err, "opening parent directory")
	}
	defer dirHandle.Close()
	if err := dirHandle.Sync(); err != nil {
		return wrapErrorf(KindStatePersistenceFailure, err, "fsync parent directory")
	}
	return nil
}

func (c *fsContainer) ReserveNextIndex(budget uint64) (uint64, Error) {
	if c.state.NextIndex >= budget {
		return 0, errorf(KindLeafBudgetExhausted, "next_index %d has reached the budget of %d leaves", c.state.NextIndex, budget)
	}
	index := c.state.NextIndex
	c.state.NextIndex++
	if err := c.persist(); err != nil {
		c.state.NextIndex--
		return 0, err
	}
	return index, nil
}

func (c *fsContainer) Close() Error {
	var result *multierror.Error
	if err := c.lock.Unlock(); err != nil {
		result = multierror.Append(result, fmt.Errorf("releasing lock: %w", err))
	}
	if result.ErrorOrNil() != nil {
		return wrapErrorf(KindLockContention, result, "closing private key container")
	}
	return nil
}
