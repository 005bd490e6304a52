package genesis

import (
	"errors"
	"fmt"

	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
)

// ErrNotGenesisCredit is returned when a proposed credit is not a valid
// genesis credit for the section.
var ErrNotGenesisCredit = errors.New("not a genesis credit")

// Signer produces an elder's signature share over a payload. The network layer
// holds the key share; the identity says which one.
type Signer interface {
	SignAsElder(identity peers.ElderIdentity, payload []byte) (threshold.SignatureShare, error)
}

// Proposal is the first round: elders sign the genesis Credit.
type Proposal struct {
	identity peers.ElderIdentity
	round    *Round[*token.Credit]
}

// NewProposal starts the first round over credit.
func NewProposal(identity peers.ElderIdentity, credit token.Credit) (*Proposal, error) {
	if !IsGenesisCredit(credit, identity.SectionPublicKey()) {
		return nil, ErrNotGenesisCredit
	}
	return &Proposal{
		identity: identity,
		round:    NewRound(identity.PublicKeySet(), &credit),
	}, nil
}

// Identity ...
func (p *Proposal) Identity() peers.ElderIdentity {
	return p.identity
}

// Credit ...
func (p *Proposal) Credit() token.Credit {
	return *p.round.Artefact()
}

// Round exposes the underlying accumulator.
func (p *Proposal) Round() *Round[*token.Credit] {
	return p.round
}

// HasSignedOwn reports whether this elder's share is recorded.
func (p *Proposal) HasSignedOwn() bool {
	return p.round.HasSigned(p.identity.KeyIndex())
}

// SignOwn signs the credit with this elder's key share and records the share.
func (p *Proposal) SignOwn(signer Signer) (threshold.SignatureShare, error) {
	share, err := signer.SignAsElder(p.identity, p.round.Payload())
	if err != nil {
		return threshold.SignatureShare{}, err
	}
	if _, err := p.round.Add(share); err != nil {
		return threshold.SignatureShare{}, err
	}
	return share, nil
}

// Add records a peer's share. Once T+1 shares are in, it returns the
// SignedCredit.
func (p *Proposal) Add(share threshold.SignatureShare) (*token.SignedCredit, error) {
	if _, err := p.round.Add(share); err != nil {
		return nil, err
	}
	return p.Signed(), nil
}

// Signed returns the SignedCredit if the round is complete, nil otherwise.
func (p *Proposal) Signed() *token.SignedCredit {
	sig, ok := p.round.Aggregate()
	if !ok {
		return nil
	}
	return &token.SignedCredit{
		Credit:         p.Credit(),
		ActorSignature: sig,
	}
}

// Accumulation is the second round: elders sign the SignedCredit.
type Accumulation struct {
	identity peers.ElderIdentity
	round    *Round[*token.SignedCredit]
}

// NewAccumulation starts the second round. The SignedCredit must carry a valid
// section signature over a genesis credit.
func NewAccumulation(identity peers.ElderIdentity, signed token.SignedCredit) (*Accumulation, error) {
	if !IsGenesisCredit(signed.Credit, identity.SectionPublicKey()) {
		return nil, ErrNotGenesisCredit
	}
	if err := identity.PublicKeySet().Verify(signed.Credit.Bytes(), signed.ActorSignature); err != nil {
		return nil, fmt.Errorf("signed credit %s: %w", signed.ID(), err)
	}
	return &Accumulation{
		identity: identity,
		round:    NewRound(identity.PublicKeySet(), &signed),
	}, nil
}

// Identity ...
func (a *Accumulation) Identity() peers.ElderIdentity {
	return a.identity
}

// SignedCredit ...
func (a *Accumulation) SignedCredit() token.SignedCredit {
	return *a.round.Artefact()
}

// Round exposes the underlying accumulator.
func (a *Accumulation) Round() *Round[*token.SignedCredit] {
	return a.round
}

// HasSignedOwn reports whether this elder's share is recorded.
func (a *Accumulation) HasSignedOwn() bool {
	return a.round.HasSigned(a.identity.KeyIndex())
}

// SignOwn signs the SignedCredit with this elder's key share and records the
// share.
func (a *Accumulation) SignOwn(signer Signer) (threshold.SignatureShare, error) {
	share, err := signer.SignAsElder(a.identity, a.round.Payload())
	if err != nil {
		return threshold.SignatureShare{}, err
	}
	if _, err := a.round.Add(share); err != nil {
		return threshold.SignatureShare{}, err
	}
	return share, nil
}

// Add records a peer's share. Once T+1 shares are in, it returns the
// CreditProof.
func (a *Accumulation) Add(share threshold.SignatureShare) (*token.CreditProof, error) {
	if _, err := a.round.Add(share); err != nil {
		return nil, err
	}
	return a.Proof()
}

// Proof returns the CreditProof if the round is complete, nil otherwise.
func (a *Accumulation) Proof() (*token.CreditProof, error) {
	sig, ok := a.round.Aggregate()
	if !ok {
		return nil, nil
	}
	keys, err := a.identity.PublicKeySet().MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &token.CreditProof{
		SignedCredit:         a.SignedCredit(),
		DebitingReplicasSig:  sig,
		DebitingReplicasKeys: keys,
	}, nil
}
