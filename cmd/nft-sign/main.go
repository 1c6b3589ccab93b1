// nft-sign 生成签名挂单/出价请求体，用于联调
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/internal/signature"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	kind := flag.String("kind", "listing", "listing 或 bid")
	keyHex := flag.String("key", os.Getenv("SIGNER_PRIVATE_KEY"), "签名私钥 (hex)")
	contract := flag.String("nft", "", "NFT 合约地址")
	tokenID := flag.String("token", "", "tokenId")
	price := flag.String("price", "", "minPrice (listing) 或 amount (bid)")
	paymentToken := flag.String("payment-token", model.ZeroAddress, "支付代币地址 (bid)")
	chainID := flag.Int64("chain-id", 11155111, "链 ID")
	verifying := flag.String("verifying-contract", os.Getenv("MARKETPLACE_CONTRACT_ADDRESS"), "市场合约地址")
	version := flag.String("version", crypto.DefaultVersion, "签名域版本")
	flag.Parse()

	if err := run(*kind, *keyHex, *contract, *tokenID, *price, *paymentToken,
		crypto.NewDomain(*version, *chainID, *verifying)); err != nil {
		fmt.Fprintln(os.Stderr, "nft-sign:", err)
		os.Exit(1)
	}
}

func run(kind, keyHex, nftContract, tokenID, price, paymentToken string, domain crypto.Domain) error {
	key, err := crypto.PrivateKeyFromHex(keyHex)
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	signer := signature.NewSigner(crypto.NewTypedDataHasher(domain), key)

	var record model.SignedRecord
	switch model.Kind(kind) {
	case model.KindListing:
		l := &model.Listing{
			NFTContract: nftContract,
			TokenID:     tokenID,
			Owner:       signer.Address().Hex(),
			MinPrice:    price,
		}
		err = signer.SignListing(l)
		record = l
	case model.KindBid:
		b := &model.Bid{
			NFTContract:  nftContract,
			TokenID:      tokenID,
			Bidder:       signer.Address().Hex(),
			Amount:       price,
			PaymentToken: paymentToken,
		}
		err = signer.SignBid(b)
		record = b
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
