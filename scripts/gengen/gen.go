package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/tcfw/mastersched/internal/config"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/tcfw/mastersched/pkg/storage"
)

func main() {
	chainID := flag.String("chain", "testnet", "chain id")
	producers := flag.Int("producers", 3, "number of genesis producers")
	flag.Parse()

	if *producers < 1 || *producers > 26 {
		fmt.Fprintln(os.Stderr, "producers must be between 1 and 26")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	info := &storage.GenesisInfo{
		ChainID: *chainID,
	}

	for i := 0; i < *producers; i++ {
		sk, err := ethCrypto.GenerateKey()
		if err != nil {
			panic(err)
		}

		n, err := name.Parse(fmt.Sprintf("master.%c", 'a'+i))
		if err != nil {
			panic(err)
		}

		k := cryptography.NewK1PublicKey(ethCrypto.CompressPubkey(&sk.PublicKey))
		info.Schedule.Producers = append(info.Schedule.Producers, schedule.NewProducerKey(n, k))

		fmt.Fprintf(os.Stderr, "%s %s %s\n", n, k, hex.EncodeToString(ethCrypto.FromECDSA(sk)))
	}

	memstore := storage.NewMemStore()

	if err := storage.NewScheduleValidator(memstore).IsScheduleValid(ctx, &info.Schedule); err != nil {
		panic(err)
	}

	if err := memstore.ApplyGenesis(ctx, info); err != nil {
		panic(err)
	}

	b64, err := config.EncodeGenesis(info)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Genesis Config:\n%s", b64)
}
