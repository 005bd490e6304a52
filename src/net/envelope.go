package net

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/token"
)

// ErrBadSignature is returned by Verify when the envelope was not signed by
// its sender.
var ErrBadSignature = errors.New("bad envelope signature")

// Location is the destination of an Envelope.
type Location struct {
	// Section is true when the Envelope goes to the elders of the section
	// responsible for Name.
	Section bool
	Name    uint32
}

// ToNode ...
func ToNode(name uint32) Location {
	return Location{Name: name}
}

// ToSection ...
func ToSection(name uint32) Location {
	return Location{Section: true, Name: name}
}

func (l Location) String() string {
	if l.Section {
		return fmt.Sprintf("section(%08x)", l.Name)
	}
	return fmt.Sprintf("node(%08x)", l.Name)
}

// Envelope is a signed Message addressed to a Location.
type Envelope struct {
	ID            uuid.UUID
	CorrelationID uuid.UUID
	Sender        string
	Dst           Location
	Msg           Message
	Signature     []byte
}

// NewEnvelope wraps msg with a fresh ID.
func NewEnvelope(msg Message, dst Location) *Envelope {
	return &Envelope{
		ID:  uuid.New(),
		Dst: dst,
		Msg: msg,
	}
}

// NewResponse wraps msg as the answer to request.
func NewResponse(msg Message, request *Envelope) *Envelope {
	env := NewEnvelope(msg, ToNode(request.SenderName()))
	env.CorrelationID = request.ID
	return env
}

// SenderName is the name of the node that signed the envelope.
func (e *Envelope) SenderName() uint32 {
	b, err := common.DecodeFromString(e.Sender)
	if err != nil {
		return 0
	}
	return keys.NodeName(b)
}

type signingBody struct {
	ID            string
	CorrelationID string
	Sender        string
	Dst           Location
	Kind          string
	Msg           Message
}

// SigningBytes is the canonical encoding of everything but the signature.
func (e *Envelope) SigningBytes() ([]byte, error) {
	kind := ""
	if e.Msg != nil {
		kind = e.Msg.Kind()
	}
	return token.Marshal(signingBody{
		ID:            e.ID.String(),
		CorrelationID: e.CorrelationID.String(),
		Sender:        e.Sender,
		Dst:           e.Dst,
		Kind:          kind,
		Msg:           e.Msg,
	})
}

// Sign sets the sender to the key's owner and signs the envelope.
func (e *Envelope) Sign(priv *ecdsa.PrivateKey) error {
	e.Sender = keys.PublicKeyHex(&priv.PublicKey)

	data, err := e.SigningBytes()
	if err != nil {
		return err
	}

	sig, err := keys.Sign(priv, data)
	if err != nil {
		return err
	}

	e.Signature = sig

	return nil
}

// Verify checks the signature against the sender's public key.
func (e *Envelope) Verify() error {
	pubBytes, err := common.DecodeFromString(e.Sender)
	if err != nil {
		return ErrBadSignature
	}

	pub := keys.ToPublicKey(pubBytes)
	if pub == nil {
		return ErrBadSignature
	}

	data, err := e.SigningBytes()
	if err != nil {
		return err
	}

	if !keys.Verify(pub, data, e.Signature) {
		return ErrBadSignature
	}

	return nil
}
