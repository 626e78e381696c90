package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NoIndex marks an ItemRef (or an editing cursor) that has no position.
const NoIndex = -1

// ItemRef addresses a Requirement, Candidate or Application inside its
// parent sequence. Key is the stable address. Index is the position seen
// when the ref was taken and is only trusted when Key is empty.
type ItemRef struct {
	Key   string `json:"key,omitempty"`
	Index int    `json:"index"`
}

func At(i int) ItemRef { return ItemRef{Index: i} }
func ByKey(k string) ItemRef { return ItemRef{Key: k, Index: NoIndex} }

func (r ItemRef) String() string {
	if r.Key != "" {
		return r.Key
	}
	return strconv.Itoa(r.Index)
}

// ParseItemRef reads a path segment that is either a position or a key.
func ParseItemRef(s string) ItemRef {
	if n, err := strconv.Atoi(s); err == nil {
		return At(n)
	}
	return ByKey(s)
}

func NewKey() string { return uuid.NewString() }

func locate[T any](items []T, keyOf func(*T) string, ref ItemRef, kind string) (int, error) {
	if ref.Key != "" {
		if ref.Index >= 0 && ref.Index < len(items) && keyOf(&items[ref.Index]) == ref.Key {
			return ref.Index, nil
		}
		for i := range items {
			if keyOf(&items[i]) == ref.Key {
				return i, nil
			}
		}
		return NoIndex, NotFound(kind, ref.Key)
	}
	if ref.Index < 0 || ref.Index >= len(items) {
		return NoIndex, NotFound(kind, strconv.Itoa(ref.Index))
	}
	return ref.Index, nil
}

func requirementKey(r *Requirement) string { return r.Key }
func candidateKey(c *Candidate) string { return c.Key }
func applicationKey(a *Application) string { return a.Key }

// AddRequirement appends r (assigning a key when it has none) and returns
// its address.
func (c *ClientRecord) AddRequirement(r Requirement) ItemRef {
	if r.Key == "" {
		r.Key = NewKey()
	}
	r.ensureKeys()
	c.Requirements = append(c.Requirements, r)
	return ItemRef{Key: r.Key, Index: len(c.Requirements) - 1}
}

// Requirement returns a pointer into the record's requirement list. The
// pointer is invalidated by any structural change to the list.
func (c *ClientRecord) Requirement(ref ItemRef) (*Requirement, int, error) {
	i, err := locate(c.Requirements, requirementKey, ref, "requirement")
	if err != nil {
		return nil, NoIndex, err
	}
	return &c.Requirements[i], i, nil
}

// RemoveRequirement deletes the addressed requirement. Every later entry
// moves down one position.
func (c *ClientRecord) RemoveRequirement(ref ItemRef) error {
	i, err := locate(c.Requirements, requirementKey, ref, "requirement")
	if err != nil {
		return err
	}
	c.Requirements = slices.Delete(c.Requirements, i, i+1)
	return nil
}

func (r *Requirement) AddCandidate(cand Candidate) ItemRef {
	if cand.Key == "" {
		cand.Key = NewKey()
	}
	r.Candidates = append(r.Candidates, cand)
	return ItemRef{Key: cand.Key, Index: len(r.Candidates) - 1}
}

func (r *Requirement) RemoveCandidate(ref ItemRef) error {
	i, err := locate(r.Candidates, candidateKey, ref, "candidate")
	if err != nil {
		return err
	}
	r.Candidates = slices.Delete(r.Candidates, i, i+1)
	return nil
}

func (r *Requirement) AddApplication(a Application) ItemRef {
	if a.Key == "" {
		a.Key = NewKey()
	}
	r.Applications = append(r.Applications, a)
	return ItemRef{Key: a.Key, Index: len(r.Applications) - 1}
}

func (r *Requirement) RemoveApplication(ref ItemRef) error {
	i, err := locate(r.Applications, applicationKey, ref, "application")
	if err != nil {
		return err
	}
	r.Applications = slices.Delete(r.Applications, i, i+1)
	return nil
}

// SetApplications replaces the application list, keying new entries.
func (r *Requirement) SetApplications(apps []Application) {
	r.Applications = slices.Clone(apps)
	if r.Applications == nil {
		r.Applications = []Application{}
	}
	for i := range r.Applications {
		if r.Applications[i].Key == "" {
			r.Applications[i].Key = NewKey()
		}
	}
}

func (r *Requirement) ClearJobDescription() {
	r.JobDescriptionFileName = ""
	r.JobDescriptionFile = nil
}

func (r *Requirement) ensureKeys() bool {
	changed := false
	if r.Candidates == nil {
		r.Candidates = []Candidate{}
	}
	if r.Applications == nil {
		r.Applications = []Application{}
	}
	for i := range r.Candidates {
		if r.Candidates[i].Key == "" {
			r.Candidates[i].Key = NewKey()
			changed = true
		}
	}
	for i := range r.Applications {
		if r.Applications[i].Key == "" {
			r.Applications[i].Key = NewKey()
			changed = true
		}
	}
	return changed
}

// Normalize replaces nil nested sequences with empty ones and backfills
// missing keys. It reports whether any key was assigned.
func (c *ClientRecord) Normalize() bool {
	if c.Requirements == nil {
		c.Requirements = []Requirement{}
	}
	changed := false
	for i := range c.Requirements {
		if c.Requirements[i].Key == "" {
			c.Requirements[i].Key = NewKey()
			changed = true
		}
		if c.Requirements[i].ensureKeys() {
			changed = true
		}
	}
	return changed
}

var storedKeySpace = uuid.MustParse("6f1c2a8e-3b4d-5e9f-8a7b-0c1d2e3f4a5b")

// BackfillKeys assigns keys to stored items that have none. Unlike
// Normalize the keys are derived from the record id and the item's path,
// so every reader of the same stored document computes the same keys. It
// returns the assigned keys by document path, e.g.
// "requirements.0.candidates.2.key".
func (c *ClientRecord) BackfillKeys() map[string]string {
	if c.Requirements == nil {
		c.Requirements = []Requirement{}
	}
	assigned := map[string]string{}
	reqKeys := func(i int) string { return c.Requirements[i].Key }
	for i := range c.Requirements {
		r := &c.Requirements[i]
		if r.Key == "" {
			path := fmt.Sprintf("requirements.%d", i)
			r.Key = c.derivedKey(path, len(c.Requirements), reqKeys)
			assigned[path+".key"] = r.Key
		}
		if r.Candidates == nil {
			r.Candidates = []Candidate{}
		}
		if r.Applications == nil {
			r.Applications = []Application{}
		}
		for j := range r.Candidates {
			if r.Candidates[j].Key == "" {
				path := fmt.Sprintf("requirements.%d.candidates.%d", i, j)
				r.Candidates[j].Key = c.derivedKey(path, len(r.Candidates), func(k int) string { return r.Candidates[k].Key })
				assigned[path+".key"] = r.Candidates[j].Key
			}
		}
		for j := range r.Applications {
			if r.Applications[j].Key == "" {
				path := fmt.Sprintf("requirements.%d.applications.%d", i, j)
				r.Applications[j].Key = c.derivedKey(path, len(r.Applications), func(k int) string { return r.Applications[k].Key })
				assigned[path+".key"] = r.Applications[j].Key
			}
		}
	}
	return assigned
}

// derivedKey hashes the record id and path, bumping a counter until the
// result is unused among the n siblings.
func (c *ClientRecord) derivedKey(path string, n int, sibling func(int) string) string {
	for attempt := 0; ; attempt++ {
		key := uuid.NewSHA1(storedKeySpace, []byte(fmt.Sprintf("%s/%s/%d", c.ID, path, attempt))).String()
		used := false
		for k := 0; k < n; k++ {
			if sibling(k) == key {
				used = true
				break
			}
		}
		if !used {
			return key
		}
	}
}

// NormalizeRequirements is Normalize for a bare requirement list.
func NormalizeRequirements(reqs []Requirement) []Requirement {
	c := ClientRecord{Requirements: cloneRequirements(reqs)}
	c.Normalize()
	return c.Requirements
}

// Clone returns a deep copy; the copy shares no slices with c.
func (c ClientRecord) Clone() ClientRecord {
	out := c
	out.Requirements = cloneRequirements(c.Requirements)
	return out
}

func cloneRequirements(in []Requirement) []Requirement {
	if in == nil {
		return nil
	}
	out := make([]Requirement, len(in))
	for i, r := range in {
		out[i] = r
		out[i].JobDescriptionFile = slices.Clone(r.JobDescriptionFile)
		out[i].Candidates = slices.Clone(r.Candidates)
		out[i].Applications = slices.Clone(r.Applications)
	}
	return out
}

func trimmedEmpty(s string) bool { return strings.TrimSpace(s) == "" }
