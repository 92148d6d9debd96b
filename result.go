package thumbcrawl

import "time"

// Outcome is the final state of one download attempt.
// Exactly one of Path (Done) or Reason (!Done) is meaningful.
type Outcome struct {
	Done     bool
	Path     string
	Reason   string
	Bytes    int
	Checksum string
}

// Succeeded returns a successful outcome for the image written to disk.
func Succeeded(img *Image) Outcome {
	return Outcome{
		Done:     true,
		Path:     img.Path,
		Bytes:    img.Bytes,
		Checksum: img.Checksum,
	}
}

// Failed returns a failed outcome carrying the error's message.
func Failed(err error) Outcome {
	reason := ErrorCode(err) + ": " + ErrorMessage(err)
	if ErrorCode(err) == EINTERNAL {
		reason = err.Error()
	}
	return Outcome{Reason: reason}
}

// ResultEntry is one row of a RunResult.
type ResultEntry struct {
	URL     string
	Title   string
	Page    int
	Outcome Outcome
}

// RunResult is the ledger of a run: one entry per discovered thumbnail URL,
// kept in discovery order. RunResult is not safe for concurrent use.
type RunResult struct {
	Query     string
	Pages     PageRange
	Dir       string
	StartedAt time.Time
	EndedAt   time.Time

	// Skipped counts image elements that were not thumbnails.
	Skipped int

	index   map[string]int
	entries []ResultEntry
	sealed  bool
}

// NewRunResult returns an empty ledger.
func NewRunResult() *RunResult {
	return &RunResult{index: make(map[string]int)}
}

// Record stores the outcome for ref. The first title seen for a URL is kept;
// the outcome is replaced on every call. Returns EINVALID once sealed.
func (r *RunResult) Record(ref ThumbnailRef, outcome Outcome) error {
	if r.sealed {
		return Errorf(EINVALID, "run result is finalized")
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[ref.SourceURL]; ok {
		r.entries[i].Outcome = outcome
		return nil
	}
	r.index[ref.SourceURL] = len(r.entries)
	r.entries = append(r.entries, ResultEntry{
		URL:     ref.SourceURL,
		Title:   ref.Title,
		Page:    ref.Page,
		Outcome: outcome,
	})
	return nil
}

// Entry returns the entry for url.
func (r *RunResult) Entry(url string) (ResultEntry, bool) {
	i, ok := r.index[url]
	if !ok {
		return ResultEntry{}, false
	}
	return r.entries[i], true
}

// Entries returns all entries in discovery order.
func (r *RunResult) Entries() []ResultEntry {
	out := make([]ResultEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Failures returns the entries whose outcome is not done, in discovery order.
func (r *RunResult) Failures() []ResultEntry {
	var out []ResultEntry
	for _, e := range r.entries {
		if !e.Outcome.Done {
			out = append(out, e)
		}
	}
	return out
}

// Total returns the number of distinct thumbnails recorded.
func (r *RunResult) Total() int {
	return len(r.entries)
}

// Succeeded returns the number of thumbnails whose final outcome is done.
func (r *RunResult) Succeeded() int {
	n := 0
	for _, e := range r.entries {
		if e.Outcome.Done {
			n++
		}
	}
	return n
}

// Seal finalizes the ledger. Further calls to Record fail.
func (r *RunResult) Seal() {
	r.sealed = true
}

// Sealed reports whether the ledger has been finalized.
func (r *RunResult) Sealed() bool {
	return r.sealed
}
