/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command didgen generates the mediator's own did:peer:2 identity and
// writes the canonicalized did.json document plus its keystore to disk
// (SPEC_FULL.md "Supplemented features" §1, grounded on
// original_source/crates/plugins/did-endpoint/src/didgen.rs).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/adorsys/didcomm-mediator/internal/bootstrap"
	"github.com/adorsys/didcomm-mediator/internal/config"
	"github.com/adorsys/didcomm-mediator/pkg/crypto"
	"github.com/adorsys/didcomm-mediator/pkg/did"
	"github.com/adorsys/didcomm-mediator/pkg/plugin"
	"github.com/adorsys/didcomm-mediator/pkg/repository"
	"github.com/adorsys/didcomm-mediator/pkg/repository/memory"
	"github.com/spf13/cobra"
)

func main() {
	var (
		publicEndpoint string
		outDir         string
	)

	cmd := &cobra.Command{
		Use:   "didgen",
		Short: "Generate the mediator's did:peer:2 identity and keystore",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(publicEndpoint, outDir)
		},
	}

	cmd.Flags().StringVar(&publicEndpoint, "public-endpoint", config.Defaults().PublicEndpoint, "public DIDComm service endpoint to embed in the generated document")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write did.json and keystore.json into")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(publicEndpoint, outDir string) error {
	cfg := config.Defaults()
	cfg.PublicEndpoint = publicEndpoint

	repo := memory.New()

	mediator, err := bootstrap.New(cfg, repo, []*plugin.Plugin{})
	if err != nil {
		return fmt.Errorf("generating identity: %w", err)
	}

	doc, err := mediator.Resolver().Resolve(mediator.OwnDID())
	if err != nil {
		return fmt.Errorf("resolving generated identity: %w", err)
	}

	canonical, err := crypto.Canonicalize(doc)
	if err != nil {
		return fmt.Errorf("canonicalizing did document: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(outDir+"/did.json", canonical, 0o644); err != nil { //nolint:gosec // did.json is a public document
		return fmt.Errorf("writing did.json: %w", err)
	}

	keystore, err := dumpKeystore(repo, doc)
	if err != nil {
		return fmt.Errorf("dumping keystore: %w", err)
	}

	if err := os.WriteFile(outDir+"/keystore.json", keystore, 0o600); err != nil {
		return fmt.Errorf("writing keystore.json: %w", err)
	}

	fmt.Printf("generated %s\nwrote %s/did.json and %s/keystore.json\n", mediator.OwnDID(), outDir, outDir)

	return nil
}

// dumpKeystore fetches the secrets bootstrap.New just minted, keyed by
// the authentication and keyAgreement kids the generated document
// names, and renders them as a JSON array of repository.Secret for a
// repository driver to load.
func dumpKeystore(repo *memory.Repository, doc *did.Document) ([]byte, error) {
	if len(doc.Authentication) == 0 || len(doc.KeyAgreement) == 0 {
		return nil, fmt.Errorf("generated document is missing authentication or keyAgreement")
	}

	kids := []string{
		doc.Authentication[0].Reference,
		doc.KeyAgreement[0].Reference,
	}

	ctx := context.Background()

	secrets := make([]*repository.Secret, 0, len(kids))

	for _, kid := range kids {
		secret, err := repo.Secrets().GetSecret(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("fetching secret %s: %w", kid, err)
		}

		secrets = append(secrets, secret)
	}

	return json.MarshalIndent(secrets, "", "  ")
}
