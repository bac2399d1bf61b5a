// Command hashsig is the CLI surface for the hashsig package: key-gen,
// sign and verify.
package main

import (
	crand "crypto/rand"
	"fmt"
	"os"

	"github.com/quantumroot/hashsig"
	"github.com/urfave/cli/v2"
)

const defaultPrivateKeyPath = "./.private_key.json"

func cmdKeyGen(c *cli.Context) error {
	path := defaultPrivateKeyPath

	dTop := uint8(c.Int("depth"))
	dBot := uint8(c.Int("bot-depth"))
	if profileName := c.String("profile"); profileName != "" {
		p, ok := hashsig.ProfileByName(profileName)
		if !ok {
			return cli.Exit(fmt.Sprintf("key-gen: unknown profile %q (known: %v)", profileName, hashsig.ProfileNames()), 2)
		}
		dTop, dBot = p.DepthTop, p.DepthBot
	}

	seed, err := randomSeed()
	if err != nil {
		return cli.Exit(fmt.Sprintf("key-gen: %v", err), 1)
	}

	ctr, cerr := hashsig.CreatePrivateKeyContainer(path, seed, dTop, dBot)
	if cerr != nil {
		return cli.Exit(fmt.Sprintf("key-gen: %v", cerr), 1)
	}
	signer := hashsig.NewSigner(ctr)
	defer signer.Close()

	fmt.Println(hashsig.EncodePublicKeyHex(signer.PublicKey()))
	return nil
}

func cmdSign(c *cli.Context) error {
	filePath := c.Args().Get(0)
	if filePath == "" {
		return cli.Exit("sign: usage: sign <file>", 2)
	}

	msg, err := os.ReadFile(filePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sign: %v", err), 1)
	}

	ctr, cerr := hashsig.OpenPrivateKeyContainer(defaultPrivateKeyPath)
	if cerr != nil {
		return cli.Exit(fmt.Sprintf("sign: %v", cerr), 1)
	}
	signer := hashsig.NewSigner(ctr)
	defer signer.Close()

	sig, serr := signer.Sign(msg)
	if serr != nil {
		return cli.Exit(fmt.Sprintf("sign: %v", serr), 1)
	}

	sigBytes, merr := sig.MarshalBinary()
	if merr != nil {
		return cli.Exit(fmt.Sprintf("sign: %v", merr), 1)
	}
	if err := os.WriteFile(filePath+".signature", sigBytes, 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("sign: %v", err), 1)
	}
	return nil
}

func cmdVerify(c *cli.Context) error {
	filePath := c.Args().Get(0)
	sigPath := c.Args().Get(1)
	pkHex := c.Args().Get(2)
	if filePath == "" || sigPath == "" || pkHex == "" {
		return cli.Exit("verify: usage: verify <file> <signature-file> <public-key-hex>", 2)
	}

	msg, err := os.ReadFile(filePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("verify: %v", err), 1)
	}
	sigBytes, err := os.ReadFile(sigPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("verify: %v", err), 1)
	}

	result := hashsig.VerifyFile(msg, sigBytes, pkHex)
	fmt.Println(result)
	switch result {
	case hashsig.ResultValid:
		return nil
	case hashsig.ResultInvalidSignature:
		return cli.Exit("", 1)
	default:
		return cli.Exit("", 2)
	}
}

func main() {
	app := &cli.App{
		Name:  "hashsig",
		Usage: "hash-based post-quantum signatures",
		Commands: []*cli.Command{
			{
				Name:  "key-gen",
				Usage: "generate a new private key at " + defaultPrivateKeyPath,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "depth", Usage: "outer tree depth (d_top)"},
					&cli.IntFlag{Name: "bot-depth", Usage: "inner tree depth (d_bot)"},
					&cli.StringFlag{Name: "profile", Usage: fmt.Sprintf("named profile (%v)", hashsig.ProfileNames())},
				},
				Action: cmdKeyGen,
			},
			{
				Name:      "sign",
				Usage:     "sign a file, writing <file>.signature",
				ArgsUsage: "<file>",
				Action:    cmdSign,
			},
			{
				Name:      "verify",
				Usage:     "verify a file against a signature and public key",
				ArgsUsage: "<file> <signature-file> <public-key-hex>",
				Action:    cmdVerify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func randomSeed() (hashsig.Digest, error) {
	var seed hashsig.Digest
	if _, err := crand.Read(seed[:]); err != nil {
		return seed, err
	}
	return seed, nil
}
