// Package contract provides the read-only ABI binding for the NFTMarketplace contract.
package contract

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNotAuctionSettled = errors.New("log is not an AuctionSettled event")
	ErrMissingTopics     = errors.New("not enough topics for AuctionSettled event")
)

// MarketplaceABI is the subset of the NFTMarketplace ABI the service reads:
//
//	function DOMAIN_SEPARATOR() external view returns (bytes32);
//	function LISTING_TYPEHASH() external view returns (bytes32);
//	function BID_TYPEHASH() external view returns (bytes32);
//	function _hashListing(Listing listing) external view returns (bytes32);
//	function _hashBid(Bid bid) external view returns (bytes32);
//	event AuctionSettled(address indexed nftContract, uint256 indexed tokenId, address seller, address buyer, uint256 price);
const MarketplaceABI = `[
	{
		"type": "function",
		"name": "DOMAIN_SEPARATOR",
		"inputs": [],
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "view"
	},
	{
		"type": "function",
		"name": "LISTING_TYPEHASH",
		"inputs": [],
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "view"
	},
	{
		"type": "function",
		"name": "BID_TYPEHASH",
		"inputs": [],
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "view"
	},
	{
		"type": "function",
		"name": "_hashListing",
		"inputs": [
			{
				"name": "listing",
				"type": "tuple",
				"components": [
					{"name": "nftContract", "type": "address"},
					{"name": "tokenId", "type": "uint256"},
					{"name": "owner", "type": "address"},
					{"name": "minPrice", "type": "uint256"},
					{"name": "signature", "type": "bytes"}
				]
			}
		],
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "view"
	},
	{
		"type": "function",
		"name": "_hashBid",
		"inputs": [
			{
				"name": "bid",
				"type": "tuple",
				"components": [
					{"name": "nftContract", "type": "address"},
					{"name": "tokenId", "type": "uint256"},
					{"name": "bidder", "type": "address"},
					{"name": "amount", "type": "uint256"},
					{"name": "paymentToken", "type": "address"},
					{"name": "signature", "type": "bytes"}
				]
			}
		],
		"outputs": [{"name": "", "type": "bytes32"}],
		"stateMutability": "view"
	},
	{
		"type": "event",
		"name": "AuctionSettled",
		"anonymous": false,
		"inputs": [
			{"name": "nftContract", "type": "address", "indexed": true},
			{"name": "tokenId", "type": "uint256", "indexed": true},
			{"name": "seller", "type": "address", "indexed": false},
			{"name": "buyer", "type": "address", "indexed": false},
			{"name": "price", "type": "uint256", "indexed": false}
		]
	}
]`

// Backend is the chain access the binding needs.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// AuctionSettledEvent represents the AuctionSettled event from the contract.
type AuctionSettledEvent struct {
	NFTContract common.Address `json:"nftContract"`
	TokenID     *big.Int       `json:"tokenId"`
	Seller      common.Address `json:"seller"`
	Buyer       common.Address `json:"buyer"`
	Price       *big.Int       `json:"price"`
	Raw         types.Log      `json:"-"`
}

// Marketplace provides methods to read the NFTMarketplace contract.
type Marketplace struct {
	address common.Address
	abi     abi.ABI
	backend Backend
}

// NewMarketplace creates a new Marketplace contract instance.
func NewMarketplace(address common.Address, backend Backend) (*Marketplace, error) {
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	if err != nil {
		return nil, err
	}

	return &Marketplace{
		address: address,
		abi:     parsed,
		backend: backend,
	}, nil
}

// Address returns the contract address.
func (m *Marketplace) Address() common.Address {
	return m.address
}

// ABI returns the contract ABI.
func (m *Marketplace) ABI() abi.ABI {
	return m.abi
}

// ListingTuple matches the NFTMarketplace.Listing struct.
type ListingTuple struct {
	NftContract common.Address
	TokenId     *big.Int
	Owner       common.Address
	MinPrice    *big.Int
	Signature   []byte
}

// BidTuple matches the NFTMarketplace.Bid struct.
type BidTuple struct {
	NftContract  common.Address
	TokenId      *big.Int
	Bidder       common.Address
	Amount       *big.Int
	PaymentToken common.Address
	Signature    []byte
}

// DomainSeparator reads DOMAIN_SEPARATOR().
func (m *Marketplace) DomainSeparator(ctx context.Context) (common.Hash, error) {
	return m.callBytes32(ctx, "DOMAIN_SEPARATOR")
}

// ListingTypeHash reads LISTING_TYPEHASH().
func (m *Marketplace) ListingTypeHash(ctx context.Context) (common.Hash, error) {
	return m.callBytes32(ctx, "LISTING_TYPEHASH")
}

// BidTypeHash reads BID_TYPEHASH().
func (m *Marketplace) BidTypeHash(ctx context.Context) (common.Hash, error) {
	return m.callBytes32(ctx, "BID_TYPEHASH")
}

// HashListing calls _hashListing(listing), the contract's own EIP-712 digest.
func (m *Marketplace) HashListing(ctx context.Context, listing ListingTuple) (common.Hash, error) {
	return m.callBytes32(ctx, "_hashListing", listing)
}

// HashBid calls _hashBid(bid).
func (m *Marketplace) HashBid(ctx context.Context, bid BidTuple) (common.Hash, error) {
	return m.callBytes32(ctx, "_hashBid", bid)
}

func (m *Marketplace) callBytes32(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, err
	}

	msg := ethereum.CallMsg{
		To:   &m.address,
		Data: data,
	}

	result, err := m.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return common.Hash{}, err
	}

	out, err := m.abi.Unpack(method, result)
	if err != nil {
		return common.Hash{}, err
	}
	value := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return common.Hash(value), nil
}

// AuctionSettledEventTopic returns the topic for AuctionSettled events.
func (m *Marketplace) AuctionSettledEventTopic() common.Hash {
	return m.abi.Events["AuctionSettled"].ID
}

// AuctionSettledQuery builds the log filter for AuctionSettled in [from, to].
func (m *Marketplace) AuctionSettledQuery(from, to uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{m.address},
		Topics:    [][]common.Hash{{m.AuctionSettledEventTopic()}},
	}
}

// ParseAuctionSettled parses an AuctionSettled event from a log.
func (m *Marketplace) ParseAuctionSettled(log types.Log) (*AuctionSettledEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != m.AuctionSettledEventTopic() {
		return nil, ErrNotAuctionSettled
	}
	// Parse indexed fields from topics
	if len(log.Topics) < 3 {
		return nil, ErrMissingTopics
	}

	event := &AuctionSettledEvent{Raw: log}
	event.NFTContract = common.BytesToAddress(log.Topics[1].Bytes())
	event.TokenID = new(big.Int).SetBytes(log.Topics[2].Bytes())

	// Parse non-indexed fields from data
	if err := m.abi.UnpackIntoInterface(event, "AuctionSettled", log.Data); err != nil {
		return nil, err
	}

	return event, nil
}
