package vault

import (
	"context"
	"testing"
	"time"

	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/config"
	"github.com/mosaicnetworks/vault/src/crypto/keys"
	"github.com/mosaicnetworks/vault/src/node/state"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(t.TempDir())
	conf.NoService = true
	return conf
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()

	key, err := Keygen(dir)
	require.NoError(t, err)

	_, err = Keygen(dir)
	assert.Error(t, err, "a second key should not overwrite the first")

	conf := testConfig(t)
	conf.SetDataDir(dir)

	v := NewVault(conf, nil)
	require.NoError(t, v.initKey())
	assert.Equal(t, keys.PrivateKeyHex(key), keys.PrivateKeyHex(conf.Key))
}

func TestInitBadgerStore(t *testing.T) {
	conf := testConfig(t)
	conf.Store = true

	v := NewVault(conf, nil)
	require.NoError(t, v.Init())
	defer v.Shutdown()

	assert.Equal(t, conf.DatabaseDir, v.Store.StorePath())
	assert.Equal(t, conf.DatabaseDir, v.Node.GetStats()["store"])
}

func TestGenesisVault(t *testing.T) {
	conf := testConfig(t)
	conf.Genesis = true

	v := NewVault(conf, nil)
	require.NoError(t, v.Init())
	defer v.Shutdown()

	v.Node.RunAsync()
	v.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, waitStage(ctx, v.Node, state.Elder))

	elders := v.Section.Elders()
	require.Len(t, elders, 1)
	assert.Equal(t, v.Peer.PubKeyHex, elders[0].PubKeyHex)
}

func TestTestnetGenesis(t *testing.T) {
	conf := testConfig(t)
	conf.Elders = 5

	net, err := NewTestnet(conf)
	require.NoError(t, err)
	defer net.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	proof, err := net.Genesis(ctx)
	require.NoError(t, err)
	require.NoError(t, proof.Verify())

	assert.Equal(t, token.MaxSupply, proof.Amount())
	assert.Equal(t, token.PublicKey(net.Section.SectionKey()).Hex(), proof.Recipient().Hex())

	for _, v := range net.Vaults {
		assert.Equal(t, state.Elder, v.Node.Stage())

		balance, err := v.Node.Balance(proof.Recipient())
		require.NoError(t, err)
		assert.Equal(t, token.MaxSupply, balance)
	}

	dir := t.TempDir()
	require.NoError(t, net.WritePeers(dir))

	ps, err := peers.NewJSONPeerSet(dir).PeerSet()
	require.NoError(t, err)
	assert.Equal(t, 5, ps.Len())
	for _, p := range net.Peers() {
		assert.True(t, ps.Contains(p.PubKeyHex), p.Moniker)
	}
}

func TestTestnetNeedsElders(t *testing.T) {
	conf := testConfig(t)
	conf.Elders = 0

	_, err := NewTestnet(conf)
	assert.Error(t, err)
}
