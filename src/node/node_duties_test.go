package node

import (
	"fmt"
	"math/rand"
	"testing"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/crypto/threshold"
	"github.com/mosaicnetworks/vault/src/genesis"
	"github.com/mosaicnetworks/vault/src/ledger"
	"github.com/mosaicnetworks/vault/src/net"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendOf(t *testing.T, d NetworkDuty) Send {
	s, ok := d.(Send)
	require.True(t, ok, "expected a Send, got %s", d.Kind())
	return s
}

func TestAssumeAdultDutiesIsIdempotent(t *testing.T) {
	section := newTestSection(t, "")
	d := newTestDuties(t, section, section.newNode(t, ""), false)

	ops, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)
	assert.Equal(t, state.Adult, d.Stage())
	require.Len(t, ops, 1)
	assert.Equal(t, RegisterWallet{Wallet: testRewardKey}, ops[0])

	ops, err = d.Process(AssumeAdultDuties{})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Equal(t, state.Adult, d.Stage())

	ops, err = d.Process(RegisterWallet{Wallet: testRewardKey})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	send := sendOf(t, ops[0])
	assert.Equal(t, net.RegisterWallet{Wallet: testRewardKey}, send.Msg)
	assert.True(t, send.Dst.Section)
}

func TestInfantCannotAssumeElderDuties(t *testing.T) {
	section := newTestSection(t, "")
	node := section.newNode(t, "")
	d := newTestDuties(t, section, node, false)

	_, err := d.Process(AssumeElderDuties{Knowledge: section.promote(node.peer)})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.Infant, d.Stage())

	_, err = d.Process(RegisterWallet{Wallet: testRewardKey})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)

	_, err = d.Process(InitSectionWallet{})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
}

func TestDutiesOutsideTheirStage(t *testing.T) {
	section := newTestSection(t, "")
	d := newTestDuties(t, section, section.newNode(t, ""), false)

	_, err := d.Process(GetStoreCost{Bytes: 10})
	assert.True(t, cm.IsNode(err, cm.NotElder), "%v", err)

	_, err = d.Process(CheckStorage{})
	assert.True(t, cm.IsNode(err, cm.NotAdult), "%v", err)

	_, err = d.Process(Send{Msg: net.StorageFull{}})
	assert.True(t, cm.IsNode(err, cm.UnknownDuty), "%v", err)

	// elder changes are ignored before the node is an elder
	ops, err := d.Process(FinishElderChange{})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestAdultReportsStorageFullOnce(t *testing.T) {
	section := newTestSection(t, "")
	d := newTestDuties(t, section, section.newNode(t, ""), false)

	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	ops, err := d.Process(RecordUsage{Bytes: 500})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = d.Process(RecordUsage{Bytes: 400})
	require.NoError(t, err)
	require.Equal(t, NetworkDuties{StorageFull{}}, ops)

	ops, err = d.Process(CheckStorage{})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = d.Process(StorageFull{})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, net.StorageFull{}, sendOf(t, ops[0]).Msg)
}

func TestGenesisOriginator(t *testing.T) {
	section := newTestSection(t, "")

	var nodes []testNode
	for i := 0; i < 5; i++ {
		nodes = append(nodes, section.newNode(t, ""))
	}
	var k = section.promote(nodes[0].peer)
	for i := 1; i < 5; i++ {
		k = section.promote(nodes[i].peer)
	}

	d := newTestDuties(t, section, nodes[4], false)
	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	ops, err := d.Process(AssumeElderDuties{Knowledge: k})
	require.NoError(t, err)
	assert.Equal(t, state.ProposingGenesis, d.Stage())

	require.Len(t, ops, 1)
	propose, ok := sendOf(t, ops[0]).Msg.(net.ProposeGenesis)
	require.True(t, ok)

	assert.Equal(t, token.MaxSupply, propose.Credit.Amount)
	assert.Equal(t, genesis.Memo, propose.Credit.Msg)
	assert.Equal(t, []byte(section.keys.PublicKey()), []byte(propose.Credit.Recipient))
	assert.Equal(t, 4, propose.Share.Index)
	require.NoError(t, section.keys.VerifyShare(propose.Credit.Bytes(), propose.Share))

	// redelivery is absorbed
	ops, err = d.Process(AssumeElderDuties{Knowledge: k})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Equal(t, state.ProposingGenesis, d.Stage())
}

func TestGenesisExclusivity(t *testing.T) {
	section := newTestSection(t, "1")

	var nodes []testNode
	for i := 0; i < 5; i++ {
		nodes = append(nodes, section.newNode(t, ""))
	}
	var k = section.promote(nodes[0].peer)
	for i := 1; i < 5; i++ {
		k = section.promote(nodes[i].peer)
	}

	d := newTestDuties(t, section, nodes[4], false)
	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	ops, err := d.Process(AssumeElderDuties{Knowledge: k})
	require.NoError(t, err)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())
	require.Len(t, ops, 1)
	assert.Equal(t, net.GetSectionWalletHistory{}, sendOf(t, ops[0]).Msg)

	credit := genesis.NewCredit(section.keys.PublicKey())
	_, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 0, credit.Bytes())})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())

	signed := token.SignedCredit{Credit: credit}
	_, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 0, signed.Bytes())})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())
}

// genesisParticipant returns the duties of the first of five elders, waiting
// for the genesis proposal with the other four already promoted.
func genesisParticipant(t *testing.T) (*testSection, []testNode, *NodeDuties) {
	section := newTestSection(t, "")

	var nodes []testNode
	for i := 0; i < 5; i++ {
		nodes = append(nodes, section.newNode(t, ""))
	}

	k := section.promote(nodes[0].peer)

	d := newTestDuties(t, section, nodes[0], false)
	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	ops, err := d.Process(AssumeElderDuties{Knowledge: k})
	require.NoError(t, err)
	require.Empty(t, ops)
	require.Equal(t, state.AwaitingGenesisThreshold, d.Stage())

	for i := 1; i < 5; i++ {
		section.promote(nodes[i].peer)
	}

	return section, nodes, d
}

func TestGenesisQueueReplayOrder(t *testing.T) {
	section, nodes, d := genesisParticipant(t)

	for b := uint64(1); b <= 3; b++ {
		ops, err := d.Process(GetStoreCost{Bytes: b, Origin: Origin{Node: 42}})
		require.NoError(t, err)
		require.Empty(t, ops)
	}
	assert.Equal(t, 3, d.QueueLen())

	credit := genesis.NewCredit(section.keys.PublicKey())

	ops, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.ProposingGenesis, d.Stage())
	require.Len(t, ops, 1)
	own := sendOf(t, ops[0]).Msg.(net.ProposeGenesis)
	assert.Equal(t, credit.ID, own.Credit.ID)
	assert.Equal(t, 0, own.Share.Index)

	// a duplicate share does not count twice
	ops, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Equal(t, state.ProposingGenesis, d.Stage())

	ops, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 3, credit.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.AccumulatingGenesis, d.Stage())
	require.Len(t, ops, 1)
	acc := sendOf(t, ops[0]).Msg.(net.AccumulateGenesis)
	assert.Equal(t, credit.ID, acc.SignedCredit.ID())
	require.NoError(t, section.keys.Verify(credit.Bytes(), acc.SignedCredit.ActorSignature))

	signed := acc.SignedCredit

	// late first-round shares are absorbed
	ops, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 2, credit.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 3, signed.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Equal(t, 3, d.QueueLen())

	ops, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 4, signed.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.Elder, d.Stage())

	require.Len(t, ops, 5)
	for i := 0; i < 3; i++ {
		cost := sendOf(t, ops[i]).Msg.(net.StoreCost)
		assert.Equal(t, uint64(i+1), cost.Bytes)
	}
	assert.Equal(t, AddNewNode{Node: nodes[0].peer.Name()}, ops[3])
	assert.Equal(t, SetNodeWallet{Node: nodes[0].peer.Name(), Wallet: testRewardKey}, ops[4])

	proof, err := d.ElderDuties().GenesisProof()
	require.NoError(t, err)
	assert.Equal(t, credit.ID, proof.ID())
	require.NoError(t, proof.Verify())

	balance, err := d.ElderDuties().Replica().Balance(token.PublicKey(section.keys.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, token.MaxSupply, balance)

	// redelivery after finalization
	ops, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 2, signed.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)
	ops, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 1, credit.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)
	ops, err = d.Process(AssumeElderDuties{})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestGenesisRejectsInvalidShares(t *testing.T) {
	section, _, d := genesisParticipant(t)

	credit := genesis.NewCredit(section.keys.PublicKey())

	forged := section.sign(t, 2, credit.Bytes())
	forged.Index = 3

	_, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: forged})
	assert.True(t, cm.IsNode(err, cm.InvalidShare), "%v", err)
	assert.Equal(t, state.AwaitingGenesisThreshold, d.Stage())

	_, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)

	wrongMsg := section.sign(t, 3, []byte("something else"))
	_, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: wrongMsg})
	assert.True(t, cm.IsNode(err, cm.InvalidShare), "%v", err)
	assert.Equal(t, state.ProposingGenesis, d.Stage())
}

func TestGenesisRejectsConflictingCredit(t *testing.T) {
	section, _, d := genesisParticipant(t)

	credit := genesis.NewCredit(section.keys.PublicKey())
	_, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)

	other := genesis.NewCredit(section.keys.PublicKey())
	_, err = d.Process(ReceiveGenesisProposal{Credit: other, Share: section.sign(t, 3, other.Bytes())})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.ProposingGenesis, d.Stage())

	notGenesis := credit
	notGenesis.Amount = 1
	_, err = genesisParticipantProposal(t, notGenesis)
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
}

func genesisParticipantProposal(t *testing.T, credit token.Credit) (NetworkDuties, error) {
	section, _, d := genesisParticipant(t)
	credit.Recipient = token.PublicKey(section.keys.PublicKey())
	return d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
}

func TestGenesisAccumulationWhileAwaiting(t *testing.T) {
	section, _, d := genesisParticipant(t)

	credit := genesis.NewCredit(section.keys.PublicKey())

	var shares []threshold.SignatureShare
	for i := 2; i < 5; i++ {
		shares = append(shares, section.sign(t, i, credit.Bytes()))
	}
	sig, err := section.keys.Combine(credit.Bytes(), shares)
	require.NoError(t, err)
	signed := token.SignedCredit{Credit: credit, ActorSignature: sig}

	ops, err := d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 4, signed.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.AccumulatingGenesis, d.Stage())
	require.Len(t, ops, 1)
	own := sendOf(t, ops[0]).Msg.(net.AccumulateGenesis)
	assert.Equal(t, 0, own.Share.Index)

	// a first-round message arriving late is absorbed
	ops, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 3, credit.Bytes())})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 3, signed.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.Elder, d.Stage())
	require.Len(t, ops, 2)
}

func TestGenesisSectionInitWalletBeforeAccumulation(t *testing.T) {
	_, _, d := genesisParticipant(t)

	_, err := d.Process(InitSectionWallet{})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.AwaitingGenesisThreshold, d.Stage())
}

func TestGenesisNodeShortcut(t *testing.T) {
	section := newTestSection(t, "")
	d := newTestDuties(t, section, section.newNode(t, ""), true)

	ops, err := d.Process(InitSectionWallet{})
	require.NoError(t, err)
	assert.Equal(t, state.Elder, d.Stage())
	require.Len(t, ops, 2)
	assert.IsType(t, AddNewNode{}, ops[0])
	assert.IsType(t, SetNodeWallet{}, ops[1])

	ops, err = d.Process(InitSectionWallet{})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

// genesisElder runs a genesis participant to completion.
func genesisElder(t *testing.T) (*testSection, []testNode, *NodeDuties) {
	section, nodes, d := genesisParticipant(t)

	credit := genesis.NewCredit(section.keys.PublicKey())
	_, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)
	ops, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 3, credit.Bytes())})
	require.NoError(t, err)
	signed := sendOf(t, ops[0]).Msg.(net.AccumulateGenesis).SignedCredit
	_, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 3, signed.Bytes())})
	require.NoError(t, err)
	_, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 4, signed.Bytes())})
	require.NoError(t, err)
	require.Equal(t, state.Elder, d.Stage())

	return section, nodes, d
}

// seededWallet runs a genesis elder to completion and returns the section
// wallet history it serves.
func seededWallet(t *testing.T) (*testSection, []testNode, token.WalletInfo) {
	section, nodes, d := genesisElder(t)

	ops, err := d.Process(GetSectionWalletHistory{Origin: Origin{Node: 7}})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	send := sendOf(t, ops[0])
	assert.Equal(t, uint32(7), send.Dst.Name)

	return section, nodes, send.Msg.(net.SectionWalletHistory).Wallet
}

// selfDealtProof is a credit proof that verifies on its own but is signed by
// a key set the section never dealt.
func selfDealtProof(t *testing.T, recipient token.PublicKey) token.CreditProof {
	pks, shares, err := threshold.GenerateKeySet(0, 1)
	require.NoError(t, err)

	sign := func(msg []byte) threshold.Signature {
		share, err := shares[0].Sign(msg)
		require.NoError(t, err)
		sig, err := pks.Combine(msg, []threshold.SignatureShare{share})
		require.NoError(t, err)
		return sig
	}

	keys, err := pks.MarshalBinary()
	require.NoError(t, err)

	credit := token.Credit{ID: "minted", Amount: token.MaxSupply, Recipient: recipient, Msg: genesis.Memo}
	signed := token.SignedCredit{Credit: credit, ActorSignature: sign(credit.Bytes())}

	proof := token.CreditProof{
		SignedCredit:         signed,
		DebitingReplicasSig:  sign(signed.Bytes()),
		DebitingReplicasKeys: keys,
	}
	require.NoError(t, proof.Verify())

	return proof
}

func TestElderRejectsSelfDealtProof(t *testing.T) {
	section, _, d := genesisElder(t)
	wallet := token.PublicKey(section.keys.PublicKey())

	forged := selfDealtProof(t, wallet)
	_, err := d.Process(ReceivePropagated{Transfer: token.TransferPropagated{CreditProof: forged}})
	assert.ErrorIs(t, err, ledger.ErrUnknownReplicas)

	balance, err := d.ElderDuties().Replica().Balance(wallet)
	require.NoError(t, err)
	assert.Equal(t, token.MaxSupply, balance)
}

func TestPromotionRejectsSelfDealtHistory(t *testing.T) {
	section, nodes, _ := seededWallet(t)

	node := section.newNode(t, "")
	d := newTestDuties(t, section, node, false)
	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	section.ageChain(genesis.MaxSectionChainLen)
	section.retire(nodes[4].peer)
	_, err = d.Process(AssumeElderDuties{Knowledge: section.promote(node.peer)})
	require.NoError(t, err)
	require.Equal(t, state.AssumingElderDuties, d.Stage())

	forged := token.WalletInfo{History: token.ActorHistory{
		Credits: []token.CreditProof{selfDealtProof(t, token.PublicKey(section.keys.PublicKey()))},
	}}

	_, err = d.Process(InitSectionWallet{Wallet: forged, From: nodes[0].peer.Name()})
	assert.ErrorIs(t, err, ledger.ErrUnknownReplicas)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())
}

func TestGenesisSurvivesFailingQueuedDuty(t *testing.T) {
	section, nodes, d := genesisParticipant(t)

	// malformed proof, fails when replayed
	_, err := d.Process(ReceivePropagated{})
	require.NoError(t, err)
	_, err = d.Process(GetStoreCost{Bytes: 1, Origin: Origin{Node: 42}})
	require.NoError(t, err)
	require.Equal(t, 2, d.QueueLen())

	credit := genesis.NewCredit(section.keys.PublicKey())
	_, err = d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 4, credit.Bytes())})
	require.NoError(t, err)
	ops, err := d.Process(ReceiveGenesisProposal{Credit: credit, Share: section.sign(t, 3, credit.Bytes())})
	require.NoError(t, err)
	signed := sendOf(t, ops[0]).Msg.(net.AccumulateGenesis).SignedCredit
	_, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 3, signed.Bytes())})
	require.NoError(t, err)

	ops, err = d.Process(ReceiveGenesisAccumulation{SignedCredit: signed, Share: section.sign(t, 4, signed.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, state.Elder, d.Stage())
	assert.Equal(t, 0, d.QueueLen())

	require.Len(t, ops, 3)
	assert.Equal(t, uint64(1), sendOf(t, ops[0]).Msg.(net.StoreCost).Bytes)
	assert.Equal(t, AddNewNode{Node: nodes[0].peer.Name()}, ops[1])
	assert.Equal(t, SetNodeWallet{Node: nodes[0].peer.Name(), Wallet: testRewardKey}, ops[2])
}

type delivery struct {
	to   int
	duty NetworkDuty
}

// runShuffledGenesis promotes five nodes and delivers every genesis message
// in an order picked by rng. It returns the duties of each node and how many
// times each one finalized.
func runShuffledGenesis(t *testing.T, rng *rand.Rand) ([]*NodeDuties, []int) {
	section := newTestSection(t, "")

	var (
		duties    []*NodeDuties
		finalized = make([]int, genesis.ElderCount)
		pool      []delivery
	)

	collect := func(from int, ops NetworkDuties) {
		for _, op := range ops {
			switch op := op.(type) {
			case Send:
				require.True(t, op.Dst.Section)
				var duty NetworkDuty
				switch msg := op.Msg.(type) {
				case net.ProposeGenesis:
					duty = ReceiveGenesisProposal{Credit: msg.Credit, Share: msg.Share}
				case net.AccumulateGenesis:
					duty = ReceiveGenesisAccumulation{SignedCredit: msg.SignedCredit, Share: msg.Share}
				default:
					t.Fatalf("unexpected message %s", msg.Kind())
				}
				for to := range duties {
					if to != from {
						pool = append(pool, delivery{to: to, duty: duty})
					}
				}
			case AddNewNode:
				finalized[from]++
			}
		}
	}

	var nodes []testNode
	for i := 0; i < genesis.ElderCount; i++ {
		node := section.newNode(t, "")
		d := newTestDuties(t, section, node, false)
		_, err := d.Process(AssumeAdultDuties{})
		require.NoError(t, err)
		nodes = append(nodes, node)
		duties = append(duties, d)
	}

	for i, d := range duties {
		ops, err := d.Process(AssumeElderDuties{Knowledge: section.promote(nodes[i].peer)})
		require.NoError(t, err)
		collect(i, ops)
	}

	for len(pool) > 0 {
		i := rng.Intn(len(pool))
		next := pool[i]
		pool = append(pool[:i], pool[i+1:]...)

		ops, err := duties[next.to].Process(next.duty)
		require.NoError(t, err, "delivering %s to node %d", next.duty.Kind(), next.to)
		collect(next.to, ops)
	}

	return duties, finalized
}

func TestGenesisOrderIndependence(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			duties, finalized := runShuffledGenesis(t, rand.New(rand.NewSource(seed)))

			var sig threshold.Signature
			for i, d := range duties {
				require.Equal(t, state.Elder, d.Stage(), "node %d", i)
				assert.Equal(t, 1, finalized[i], "node %d", i)

				proof, err := d.ElderDuties().GenesisProof()
				require.NoError(t, err)
				require.NoError(t, proof.Verify())

				if i == 0 {
					sig = proof.DebitingReplicasSig
					continue
				}
				assert.Equal(t, sig, proof.DebitingReplicasSig, "node %d", i)
			}
		})
	}
}

func TestOrdinaryPromotion(t *testing.T) {
	section, nodes, wallet := seededWallet(t)
	require.Len(t, wallet.History.Credits, 1)

	// the section has moved on since genesis: one elder is replaced
	section.ageChain(genesis.MaxSectionChainLen)
	section.retire(nodes[4].peer)

	node := section.newNode(t, "")
	k := section.promote(node.peer)

	d := newTestDuties(t, section, node, false)
	_, err := d.Process(AssumeAdultDuties{})
	require.NoError(t, err)

	ops, err := d.Process(AssumeElderDuties{Knowledge: k})
	require.NoError(t, err)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())
	require.Len(t, ops, 1)
	assert.Equal(t, net.GetSectionWalletHistory{}, sendOf(t, ops[0]).Msg)

	_, err = d.Process(SetNodeWallet{Node: 1, Wallet: token.PublicKey("one")})
	require.NoError(t, err)
	_, err = d.Process(GetBalance{Wallet: token.PublicKey(section.keys.PublicKey()), Origin: Origin{Node: 9}})
	require.NoError(t, err)
	assert.Equal(t, 2, d.QueueLen())

	// only the elders may answer the query
	_, err = d.Process(InitSectionWallet{Wallet: wallet, From: 7})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	_, err = d.Process(InitSectionWallet{Wallet: wallet, From: node.peer.Name()})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)
	assert.Equal(t, state.AssumingElderDuties, d.Stage())

	ops, err = d.Process(InitSectionWallet{Wallet: wallet, From: nodes[0].peer.Name()})
	require.NoError(t, err)
	assert.Equal(t, state.Elder, d.Stage())

	require.Len(t, ops, 3)
	balance := sendOf(t, ops[0]).Msg.(net.Balance)
	assert.Equal(t, token.MaxSupply, balance.Amount)
	assert.Equal(t, AddNewNode{Node: node.peer.Name()}, ops[1])
	assert.Equal(t, SetNodeWallet{Node: node.peer.Name(), Wallet: testRewardKey}, ops[2])

	w, err := d.ElderDuties().Rewards().GetNodeWallet(1)
	require.NoError(t, err)
	assert.Equal(t, token.PublicKey("one"), w)

	// the other elders answer the same query
	ops, err = d.Process(InitSectionWallet{Wallet: wallet, From: nodes[1].peer.Name()})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestElderChange(t *testing.T) {
	section := newTestSection(t, "")
	node := section.newNode(t, "")
	d := newTestDuties(t, section, node, true)

	_, err := d.Process(InitSectionWallet{})
	require.NoError(t, err)
	require.Equal(t, state.Elder, d.Stage())

	oldKey := d.ElderDuties().Identity().SectionPublicKey()

	section.promote(node.peer)
	k := section.rekey(t, "0", node.peer)
	newKey := k.SectionKey()

	ops, err := d.Process(InitiateElderChange{Knowledge: k})
	require.NoError(t, err)
	assert.Empty(t, ops)

	constellation := d.stage.(elder).constellation
	assert.Equal(t, 1, constellation.PendingChanges())

	// announced twice
	_, err = d.Process(InitiateElderChange{Knowledge: k})
	require.NoError(t, err)
	assert.Equal(t, 1, constellation.PendingChanges())

	_, err = d.Process(FinishElderChange{PreviousKey: newKey, NewKey: oldKey})
	require.NoError(t, err, "finishing towards the current key is a no-op")

	_, err = d.Process(FinishElderChange{PreviousKey: newKey, NewKey: section.keys.PublicKey()})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)

	_, err = d.Process(FinishElderChange{PreviousKey: oldKey, NewKey: section.keys.PublicKey()})
	assert.True(t, cm.IsNode(err, cm.InvalidOperation), "%v", err)

	_, err = d.Process(FinishElderChange{PreviousKey: oldKey, NewKey: newKey})
	require.NoError(t, err)
	assert.Equal(t, 0, constellation.PendingChanges())

	identity := d.ElderDuties().Identity()
	assert.True(t, identity.SectionPublicKey().Equal(newKey))
	assert.Equal(t, "(0)", identity.Prefix().String())
	assert.Equal(t, "(0)", d.ElderDuties().RateLimit().Prefix().String())

	_, err = d.Process(FinishElderChange{PreviousKey: oldKey, NewKey: newKey})
	require.NoError(t, err)
}
