package genesis

import (
	"fmt"
	"sort"

	"github.com/mosaicnetworks/vault/src/crypto/threshold"
)

// Signable is an artefact with canonical signing bytes.
type Signable interface {
	Bytes() []byte
}

// Round accumulates the signature shares of a section over one artefact.
type Round[A Signable] struct {
	artefact  A
	payload   []byte
	keys      *threshold.PublicKeySet
	shares    map[int]threshold.SignatureShare
	aggregate threshold.Signature
}

// NewRound ...
func NewRound[A Signable](keys *threshold.PublicKeySet, artefact A) *Round[A] {
	return &Round[A]{
		artefact: artefact,
		payload:  artefact.Bytes(),
		keys:     keys,
		shares:   make(map[int]threshold.SignatureShare),
	}
}

// Artefact ...
func (r *Round[A]) Artefact() A {
	return r.artefact
}

// Payload returns the bytes being signed.
func (r *Round[A]) Payload() []byte {
	return r.payload
}

// Add verifies s and records it under its signer index. It reports whether
// the share was new. Once the round is complete Add is a no-op. The share
// that brings the count to T+1 triggers the combination.
func (r *Round[A]) Add(s threshold.SignatureShare) (bool, error) {
	if r.aggregate != nil {
		return false, nil
	}

	if err := r.keys.VerifyShare(r.payload, s); err != nil {
		return false, fmt.Errorf("share %d: %w", s.Index, err)
	}

	_, seen := r.shares[s.Index]
	r.shares[s.Index] = s

	if len(r.shares) <= r.keys.Threshold() {
		return !seen, nil
	}

	sig, err := r.keys.Combine(r.payload, r.sorted())
	if err != nil {
		if !seen {
			delete(r.shares, s.Index)
		}
		return false, err
	}

	r.aggregate = sig

	return !seen, nil
}

func (r *Round[A]) sorted() []threshold.SignatureShare {
	res := make([]threshold.SignatureShare, 0, len(r.shares))
	for _, s := range r.shares {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Index < res[j].Index })
	return res
}

// Len is the number of distinct signers recorded.
func (r *Round[A]) Len() int {
	return len(r.shares)
}

// HasSigned ...
func (r *Round[A]) HasSigned(index int) bool {
	_, ok := r.shares[index]
	return ok
}

// Aggregate returns the combined signature once the round is complete.
func (r *Round[A]) Aggregate() (threshold.Signature, bool) {
	return r.aggregate, r.aggregate != nil
}

// Complete ...
func (r *Round[A]) Complete() bool {
	return r.aggregate != nil
}
