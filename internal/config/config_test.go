package config

import (
	"testing"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/tcfw/mastersched/pkg/storage"
)

func TestStoreDefaults(t *testing.T) {
	c, err := buildStoreConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data", c.Path)
	assert.False(t, c.Memory)
	assert.Equal(t, 5, c.OpenAttempts)
}

func TestGenesisConfigRoundTrip(t *testing.T) {
	sk, err := ethCrypto.GenerateKey()
	require.NoError(t, err)

	key := cryptography.NewK1PublicKey(ethCrypto.CompressPubkey(&sk.PublicKey))

	g := &storage.GenesisInfo{
		ChainID: "test",
		Schedule: schedule.ProducerSchedule{
			Producers: []schedule.ProducerKey{
				schedule.NewProducerKey(name.MustParse("master.a"), key),
			},
		},
	}

	enc, err := EncodeGenesis(g)
	require.NoError(t, err)

	viper.Set(Cfg_chain_genesisInfo, enc)
	defer viper.Set(Cfg_chain_genesisInfo, "")

	c, err := build()
	require.NoError(t, err)

	if assert.NotNil(t, c.Chain().Genesis) {
		assert.Equal(t, "test", c.Chain().Genesis.ChainID)
		assert.True(t, g.Schedule.Equal(c.Chain().Genesis.Schedule))
	}
}

func TestNoGenesis(t *testing.T) {
	c, err := buildChainConfig()
	require.NoError(t, err)
	assert.Nil(t, c.Genesis)
}

func TestBadGenesis(t *testing.T) {
	_, err := DecodeGenesis("!!notbase64")
	assert.Error(t, err)
}
