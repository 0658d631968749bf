package storage

import (
	"testing"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
)

func newKey(t *testing.T) cryptography.PublicKey {
	sk, err := ethCrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	return cryptography.NewK1PublicKey(ethCrypto.CompressPubkey(&sk.PublicKey))
}

func newSchedule(t *testing.T, version uint32, names ...string) *schedule.ProducerSchedule {
	s := &schedule.ProducerSchedule{Version: version}

	for _, n := range names {
		s.Producers = append(s.Producers, schedule.NewProducerKey(name.MustParse(n), newKey(t)))
	}

	return s
}
