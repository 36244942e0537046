// Command futurepet runs a single-process simulation of three parties
// computing on secret-shared values: each party shares its secret, the
// parties jointly compute a sum (or, for Shamir with threshold 1, a
// product) without revealing their inputs, and finally reveal the result.
package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/google/logger"
	"github.com/spf13/cobra"

	sharing "github.com/Quitlox/FuturePET-PET-Lab-Demo"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/additive"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/pool"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/shamir"
	"github.com/Quitlox/FuturePET-PET-Lab-Demo/testutil"
)

var partyNames = []string{"alice", "bob", "charlie"}

var (
	flagModulus   int64
	flagThreshold int
	flagSecrets   []int64
	flagTimeout   time.Duration
)

func main() {
	root := &cobra.Command{
		Use:          "futurepet",
		Short:        "Secret sharing demos with three simulated parties",
		SilenceUsage: true,
	}
	root.PersistentFlags().Int64Var(&flagModulus, "modulus", 1679, "public modulus of the scheme")
	root.PersistentFlags().Int64SliceVar(&flagSecrets, "secrets", []int64{17, 29, 61}, "the three party secrets")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "protocol timeout")

	sumAdditive := &cobra.Command{
		Use:   "sum-additive",
		Short: "Reveal the sum of the secrets using additive sharing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(func(p pool.Pool) (sharing.Scheme, error) {
				return additive.New(len(partyNames), big.NewInt(flagModulus), p)
			})
		},
	}

	sumShamir := &cobra.Command{
		Use:   "sum-shamir",
		Short: "Reveal the sum of the secrets using Shamir sharing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(func(p pool.Pool) (sharing.Scheme, error) {
				return shamir.New(len(partyNames), big.NewInt(flagModulus), flagThreshold, p)
			})
		},
	}
	sumShamir.Flags().IntVar(&flagThreshold, "threshold", 0, "reconstruction threshold (0 selects 1+n/2)")

	product := &cobra.Command{
		Use:   "product",
		Short: "Reveal the product of the secrets using Shamir sharing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProduct()
		},
	}
	product.Flags().IntVar(&flagThreshold, "threshold", 1, "reconstruction threshold (must satisfy 2t-1 <= n)")

	root.AddCommand(sumAdditive, sumShamir, product)

	lg := logger.Init("futurepet", true, false, io.Discard)
	defer lg.Close()

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func secretsByName() (map[string]*big.Int, error) {
	if len(flagSecrets) != len(partyNames) {
		return nil, fmt.Errorf("expected %d secrets, got %d", len(partyNames), len(flagSecrets))
	}
	secrets := make(map[string]*big.Int, len(partyNames))
	for i, name := range partyNames {
		secrets[name] = big.NewInt(flagSecrets[i])
	}
	return secrets, nil
}

// runSum lets every party share its secret, sums the three shared values
// locally, and reveals the result.
func runSum(newScheme func(pool.Pool) (sharing.Scheme, error)) error {
	secrets, err := secretsByName()
	if err != nil {
		return err
	}

	pools := testutil.Pools(partyNames...)
	parties := make([]func(context.Context) error, len(pools))
	for i, p := range pools {
		p := p
		parties[i] = func(ctx context.Context) error {
			scheme, err := newScheme(p)
			if err != nil {
				return err
			}

			shared, err := sharing.ShareEach(ctx, scheme, "input", secrets[p.Name()])
			if err != nil {
				return err
			}
			if err := shared[0].ValidateIdentifiers(ctx); err != nil {
				return err
			}

			sum := shared[0]
			for _, x := range shared[1:] {
				if sum, err = sum.Add(x); err != nil {
					return err
				}
			}

			result, err := sum.ExchangeAndReconstruct(ctx, nil)
			if err != nil {
				return err
			}
			logger.Infof("%s: revealed sum = %v", p.Name(), result)
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	return testutil.RunParties(ctx, parties...)
}

// runProduct multiplies the three shared secrets pairwise through the
// Shamir resharing protocol and reveals the result.
func runProduct() error {
	secrets, err := secretsByName()
	if err != nil {
		return err
	}

	pools := testutil.Pools(partyNames...)
	parties := make([]func(context.Context) error, len(pools))
	for i, p := range pools {
		p := p
		parties[i] = func(ctx context.Context) error {
			scheme, err := shamir.New(len(partyNames), big.NewInt(flagModulus), flagThreshold, p)
			if err != nil {
				return err
			}

			shared, err := sharing.ShareEach(ctx, scheme, "input", secrets[p.Name()])
			if err != nil {
				return err
			}

			product := shared[0]
			for _, x := range shared[1:] {
				if product, err = sharing.Mul(ctx, product, x); err != nil {
					return err
				}
			}

			result, err := product.ExchangeAndReconstruct(ctx, nil)
			if err != nil {
				return err
			}
			logger.Infof("%s: revealed product = %v", p.Name(), result)
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	return testutil.RunParties(ctx, parties...)
}
