// Package snapshot writes and reads portable run exports: a zstd stream
// holding a JSON header line followed by a gob body.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/world"
)

// Version is the snapshot layout written by this package.
const Version = 1

var ErrVersion = errors.New("unsupported snapshot version")

// Header describes a snapshot without decoding its body.
type Header struct {
	Version    int          `json:"version"`
	Seed       int64        `json:"seed"`
	Day        int          `json:"day"`
	Background string       `json:"background,omitempty"`
	Ending     world.Ending `json:"ending,omitempty"`
	SavedAt    time.Time    `json:"saved_at"`
}

// SnapshotV1 is a run and the profile it was played under. Both are kept
// as JSON so loading goes through the same gap filling as a save.
type SnapshotV1 struct {
	Header   Header
	State    []byte
	Progress []byte
}

// New captures st and p.
func New(st *engine.WorldState, p meta.Progress, now time.Time) (SnapshotV1, error) {
	state, err := json.Marshal(st)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("encode state: %w", err)
	}
	progress, err := json.Marshal(p)
	if err != nil {
		return SnapshotV1{}, fmt.Errorf("encode progress: %w", err)
	}
	return SnapshotV1{
		Header: Header{
			Version:    Version,
			Seed:       st.Seed,
			Day:        st.Day,
			Background: st.Background,
			Ending:     st.Ending,
			SavedAt:    now.UTC(),
		},
		State:    state,
		Progress: progress,
	}, nil
}

// Decode restores the run and the profile.
func (s SnapshotV1) Decode() (*engine.WorldState, meta.Progress, error) {
	if s.Header.Version != Version {
		return nil, meta.Progress{}, fmt.Errorf("%w: %d", ErrVersion, s.Header.Version)
	}
	st, err := engine.DecodeState(s.State)
	if err != nil {
		return nil, meta.Progress{}, err
	}
	p := meta.NewProgress()
	if len(s.Progress) > 0 {
		if err := json.Unmarshal(s.Progress, &p); err != nil {
			return nil, meta.Progress{}, fmt.Errorf("decode progress: %w", err)
		}
	}
	return st, p, nil
}

// FileName is the conventional name for a snapshot of a run on a day.
func FileName(h Header) string {
	return fmt.Sprintf("run-%d-day%04d.snap.zst", h.Seed, h.Day)
}

// Write stores snap at path, creating parent directories.
func Write(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads the snapshot at path.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
