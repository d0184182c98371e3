package registry

// Logical contract names used as keys of the per-network address table.
const (
	ClubRegistry        = "ClubRegistry"
	PermanentMembership = "PermanentMembership"
	TemporaryMembership = "TemporaryMembership"
	TokenGate           = "TokenGate"
)

// Token standard names. They have no fixed address; see Registry.Token.
const (
	ERC20   = "ERC20"
	ERC721  = "ERC721"
	ERC1155 = "ERC1155"
)

// ClubRegistryABI is the read fragment of the club registry.
const ClubRegistryABI = `[
	{
		"type": "function",
		"name": "getClubDetails",
		"stateMutability": "view",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": [
			{"name": "name", "type": "string"},
			{"name": "admin", "type": "address"},
			{"name": "active", "type": "bool"},
			{"name": "memberCount", "type": "uint256"}
		]
	}
]`

// PermanentMembershipABI is the fragment of the permanent pass contract.
const PermanentMembershipABI = `[
	{
		"type": "function",
		"name": "isMember",
		"stateMutability": "view",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "account", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

// TemporaryMembershipABI is the fragment of the subscription contract,
// including the payable purchase methods.
const TemporaryMembershipABI = `[
	{
		"type": "function",
		"name": "hasActiveMembership",
		"stateMutability": "view",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "account", "type": "address"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "checkUserMembership",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "club", "type": "string"}
		],
		"outputs": [
			{"name": "isMember", "type": "bool"},
			{"name": "expirationDate", "type": "uint256"},
			{"name": "membershipType", "type": "uint8"}
		]
	},
	{
		"type": "function",
		"name": "getClubMembershipConditions",
		"stateMutability": "view",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": [
			{"name": "membershipPrice", "type": "uint256"},
			{"name": "quarterPrice", "type": "uint256"},
			{"name": "yearPrice", "type": "uint256"},
			{"name": "membershipDuration", "type": "uint256"},
			{"name": "tokenGateEnabled", "type": "bool"},
			{"name": "tokenGateCount", "type": "uint256"}
		]
	},
	{
		"type": "function",
		"name": "purchaseMembership",
		"stateMutability": "payable",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "purchaseQuarterMembership",
		"stateMutability": "payable",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "purchaseYearMembership",
		"stateMutability": "payable",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "purchaseMembershipFor",
		"stateMutability": "payable",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "recipient", "type": "address"}
		],
		"outputs": []
	}
]`

// TokenGateABI is the fragment of the token gate contract, including the
// admin-restricted gate writes.
const TokenGateABI = `[
	{
		"type": "function",
		"name": "checkDetailedMembership",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "club", "type": "string"}
		],
		"outputs": [
			{"name": "hasERC20", "type": "bool"},
			{"name": "hasERC721", "type": "bool"},
			{"name": "hasERC1155", "type": "bool"},
			{"name": "hasCrossChain", "type": "bool"}
		]
	},
	{
		"type": "function",
		"name": "getTokenGates",
		"stateMutability": "view",
		"inputs": [{"name": "club", "type": "string"}],
		"outputs": [
			{"name": "tokenAddresses", "type": "address[]"},
			{"name": "tokenTypes", "type": "uint8[]"},
			{"name": "requiredAmounts", "type": "uint256[]"},
			{"name": "tokenIds", "type": "uint256[]"},
			{"name": "chainIds", "type": "uint256[]"}
		]
	},
	{
		"type": "function",
		"name": "addTokenGate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "token", "type": "address"},
			{"name": "requiredAmount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "addNFTGate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "token", "type": "address"},
			{"name": "requiredAmount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "addERC1155Gate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "token", "type": "address"},
			{"name": "tokenId", "type": "uint256"},
			{"name": "requiredAmount", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "addCrossChainTokenGate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "club", "type": "string"},
			{"name": "chainId", "type": "uint256"},
			{"name": "token", "type": "address"},
			{"name": "requiredAmount", "type": "uint256"}
		],
		"outputs": []
	}
]`

// ERC20ABI and ERC721ABI share the single-owner balanceOf signature.
const ERC20ABI = `[
	{
		"type": "function",
		"name": "balanceOf",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

const ERC721ABI = ERC20ABI

const ERC1155ABI = `[
	{
		"type": "function",
		"name": "balanceOf",
		"stateMutability": "view",
		"inputs": [
			{"name": "account", "type": "address"},
			{"name": "id", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

// builtinABIs maps every known logical name to its ABI fragment.
var builtinABIs = map[string]string{
	ClubRegistry:        ClubRegistryABI,
	PermanentMembership: PermanentMembershipABI,
	TemporaryMembership: TemporaryMembershipABI,
	TokenGate:           TokenGateABI,
	ERC20:               ERC20ABI,
	ERC721:              ERC721ABI,
	ERC1155:             ERC1155ABI,
}
