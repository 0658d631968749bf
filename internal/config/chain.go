package config

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tcfw/mastersched/pkg/storage"
)

type Chain struct {
	// Genesis is nil when no genesis is configured.
	Genesis *storage.GenesisInfo
}

const (
	Cfg_chain_genesisInfo = "chain.genesis"
)

func buildChainConfig() (*Chain, error) {
	c := &Chain{}

	gcfg := viper.GetString(Cfg_chain_genesisInfo)
	if gcfg == "" {
		return c, nil
	}

	g, err := DecodeGenesis(gcfg)
	if err != nil {
		return nil, err
	}

	c.Genesis = g

	return c, nil
}

// EncodeGenesis renders g in the form expected by chain.genesis.
func EncodeGenesis(g *storage.GenesisInfo) (string, error) {
	b, err := g.Marshal()
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeGenesis(s string) (*storage.GenesisInfo, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "b64 decoding genesis config")
	}

	g := &storage.GenesisInfo{}
	if err := g.Unmarshal(raw); err != nil {
		return nil, err
	}

	return g, nil
}
