package peers

import (
	"bytes"
	"encoding/json"

	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto"
)

// PeerSet is an immutable set of Peers, in insertion order.
type PeerSet struct {
	Peers    []*Peer          `json:"peers"`
	ByPubKey map[string]*Peer `json:"-"`
	ByName   map[uint32]*Peer `json:"-"`

	//cached values
	hash []byte
}

// NewPeerSet creates a new PeerSet from a list of Peers. Duplicate public keys
// are dropped.
func NewPeerSet(peers []*Peer) *PeerSet {
	peerSet := &PeerSet{
		Peers:    []*Peer{},
		ByPubKey: make(map[string]*Peer),
		ByName:   make(map[uint32]*Peer),
	}

	for _, peer := range peers {
		if _, ok := peerSet.ByPubKey[peer.PubKeyHex]; ok {
			continue
		}
		peerSet.Peers = append(peerSet.Peers, peer)
		peerSet.ByPubKey[peer.PubKeyHex] = peer
		peerSet.ByName[peer.Name()] = peer
	}

	return peerSet
}

// WithNewPeer returns a new PeerSet including peer.
func (peerSet *PeerSet) WithNewPeer(peer *Peer) *PeerSet {
	peers := make([]*Peer, len(peerSet.Peers), len(peerSet.Peers)+1)
	copy(peers, peerSet.Peers)
	return NewPeerSet(append(peers, peer))
}

// WithRemovedPeer returns a new PeerSet excluding peer.
func (peerSet *PeerSet) WithRemovedPeer(peer *Peer) *PeerSet {
	peers := []*Peer{}
	for _, p := range peerSet.Peers {
		if p.PubKeyHex != peer.PubKeyHex {
			peers = append(peers, p)
		}
	}
	return NewPeerSet(peers)
}

// Contains ...
func (peerSet *PeerSet) Contains(pubKeyHex string) bool {
	_, ok := peerSet.ByPubKey[pubKeyHex]
	return ok
}

// PubKeys returns the PeerSet's slice of public keys
func (peerSet *PeerSet) PubKeys() []string {
	res := []string{}
	for _, peer := range peerSet.Peers {
		res = append(res, peer.PubKeyHex)
	}
	return res
}

// Names returns the PeerSet's slice of names
func (peerSet *PeerSet) Names() []uint32 {
	res := []uint32{}
	for _, peer := range peerSet.Peers {
		res = append(res, peer.Name())
	}
	return res
}

// Len returns the number of Peers in the PeerSet
func (peerSet *PeerSet) Len() int {
	return len(peerSet.Peers)
}

// Hash is the SHA256 chain of the members' public keys.
func (peerSet *PeerSet) Hash() []byte {
	if len(peerSet.hash) == 0 {
		hash := []byte{}
		for _, p := range peerSet.Peers {
			hash = crypto.SimpleHashFromTwoHashes(hash, p.PubKeyBytes())
		}
		peerSet.hash = hash
	}
	return peerSet.hash
}

// Hex is the hexadecimal representation of Hash
func (peerSet *PeerSet) Hex() string {
	return common.EncodeToString(peerSet.Hash())
}

// Marshal marshals the peers as a JSON list.
func (peerSet *PeerSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(peerSet.Peers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Majority is the smallest number of members forming a strict majority.
func (peerSet *PeerSet) Majority() int {
	return peerSet.Len()/2 + 1
}

// ThresholdFor returns the threshold T of a key shared by n elders. T+1
// shares, a strict majority, are needed to sign for the section.
func ThresholdFor(n int) int {
	return n / 2
}
