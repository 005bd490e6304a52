package threshold

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mosaicnetworks/vault/src/common"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing/bn256"
	"go.dedis.ch/kyber/v3/share"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/sign/tbls"
)

var (
	// ErrInvalidShare is returned when a signature share does not verify
	// against the public key share of its claimed signer.
	ErrInvalidShare = errors.New("invalid signature share")
	// ErrNotEnoughShares is returned by Combine when given T shares or fewer.
	ErrNotEnoughShares = errors.New("not enough signature shares")
	// ErrInvalidSignature is returned when a combined signature does not
	// verify under the group key.
	ErrInvalidSignature = errors.New("invalid signature")
)

var suite = bn256.NewSuite()

// PublicKey is the marshalled form of a G2 point.
type PublicKey []byte

// Hex ...
func (pk PublicKey) Hex() string {
	return common.EncodeToString(pk)
}

// Equal ...
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk, other)
}

// Verify checks sig over msg.
func (pk PublicKey) Verify(msg []byte, sig Signature) error {
	point := suite.G2().Point()
	if err := point.UnmarshalBinary(pk); err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	if err := bls.Verify(suite, point, msg, sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Signature is a combined BLS signature.
type Signature []byte

// Hex ...
func (s Signature) Hex() string {
	return common.EncodeToString(s)
}

// SignatureShare is one elder's contribution to a Signature.
type SignatureShare struct {
	Index int
	Share []byte
}

// PublicKeySet is the public side of a section's key: the group key, its
// threshold and the public key share of every member.
type PublicKeySet struct {
	poly *share.PubPoly
	size int
}

// GenerateKeySet deals a fresh key of the given threshold among n members.
// Sections receive their key from the routing layer's DKG; the dealer is used
// by in-process networks and tests.
func GenerateKeySet(threshold, n int) (*PublicKeySet, []*SecretKeyShare, error) {
	if threshold < 0 || threshold >= n {
		return nil, nil, fmt.Errorf("threshold %d out of range for %d members", threshold, n)
	}

	secret := suite.G2().Scalar().Pick(suite.RandomStream())
	priPoly := share.NewPriPoly(suite.G2(), threshold+1, secret, suite.RandomStream())
	pubPoly := priPoly.Commit(suite.G2().Point().Base())

	shares := make([]*SecretKeyShare, 0, n)
	for _, s := range priPoly.Shares(n) {
		shares = append(shares, &SecretKeyShare{share: s})
	}

	return &PublicKeySet{poly: pubPoly, size: n}, shares, nil
}

// Threshold returns T. T+1 shares are needed to produce a Signature.
func (p *PublicKeySet) Threshold() int {
	return p.poly.Threshold() - 1
}

// Size is the number of key shares dealt.
func (p *PublicKeySet) Size() int {
	return p.size
}

// PublicKey returns the group key.
func (p *PublicKeySet) PublicKey() PublicKey {
	b, _ := p.poly.Commit().MarshalBinary()
	return b
}

// PublicKeyShare returns the public key share of member i.
func (p *PublicKeySet) PublicKeyShare(i int) PublicKey {
	b, _ := p.poly.Eval(i).V.MarshalBinary()
	return b
}

// VerifyShare checks that s is member s.Index's share over msg.
func (p *PublicKeySet) VerifyShare(msg []byte, s SignatureShare) error {
	if s.Index < 0 || s.Index >= p.size {
		return ErrInvalidShare
	}
	idx, err := tbls.SigShare(s.Share).Index()
	if err != nil || idx != s.Index {
		return ErrInvalidShare
	}
	if err := tbls.Verify(suite, p.poly, msg, s.Share); err != nil {
		return ErrInvalidShare
	}
	return nil
}

// Combine interpolates T+1 shares over msg into the group Signature. Shares
// must have been verified with VerifyShare; Combine checks them again and fails
// with ErrInvalidShare otherwise.
func (p *PublicKeySet) Combine(msg []byte, shares []SignatureShare) (Signature, error) {
	t := p.Threshold() + 1
	if len(shares) < t {
		return nil, ErrNotEnoughShares
	}

	raw := make([][]byte, 0, len(shares))
	for _, s := range shares {
		raw = append(raw, s.Share)
	}

	sig, err := tbls.Recover(suite, p.poly, msg, raw, t, p.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	return sig, nil
}

// Verify checks sig over msg against the group key.
func (p *PublicKeySet) Verify(msg []byte, sig Signature) error {
	if err := bls.Verify(suite, p.poly.Commit(), msg, sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Equal ...
func (p *PublicKeySet) Equal(other *PublicKeySet) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.size == other.size && p.poly.Equal(other.poly)
}

// MarshalBinary encodes the set as the member count followed by the
// polynomial commitments.
func (p *PublicKeySet) MarshalBinary() ([]byte, error) {
	_, commits := p.poly.Info()

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(p.size))
	for _, c := range commits {
		b, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	return buf.Bytes(), nil
}

// UnmarshalPublicKeySet decodes the output of MarshalBinary.
func UnmarshalPublicKeySet(data []byte) (*PublicKeySet, error) {
	pointLen := suite.G2().PointLen()

	if len(data) < 4 || (len(data)-4)%pointLen != 0 || len(data) == 4 {
		return nil, fmt.Errorf("malformed public key set of %d bytes", len(data))
	}

	size := int(binary.BigEndian.Uint32(data[:4]))

	commits := []kyber.Point{}
	for off := 4; off < len(data); off += pointLen {
		point := suite.G2().Point()
		if err := point.UnmarshalBinary(data[off : off+pointLen]); err != nil {
			return nil, err
		}
		commits = append(commits, point)
	}

	if len(commits) > size {
		return nil, fmt.Errorf("threshold %d out of range for %d members", len(commits)-1, size)
	}

	return &PublicKeySet{
		poly: share.NewPubPoly(suite.G2(), suite.G2().Point().Base(), commits),
		size: size,
	}, nil
}

// SecretKeyShare is one member's private share of the section key.
type SecretKeyShare struct {
	share *share.PriShare
}

// Index is the member index this share was dealt to.
func (s *SecretKeyShare) Index() int {
	return s.share.I
}

// Sign produces this member's SignatureShare over msg.
func (s *SecretKeyShare) Sign(msg []byte) (SignatureShare, error) {
	sig, err := tbls.Sign(suite, s.share, msg)
	if err != nil {
		return SignatureShare{}, err
	}
	return SignatureShare{Index: s.share.I, Share: sig}, nil
}
