package gate

const (
	// AccessPrefixSignature is the message prefix of access signatures.
	AccessPrefixSignature = "__club_access"
	// ClubHeader is the gRPC metadata key naming the club being accessed.
	ClubHeader = "x-club-id"
	// AccountHeader contains the caller's Ethereum address
	// (e.g., "0x94d04332C4f5273feF69c4a52D24f42a3aF1F207").
	AccountHeader = "x-account-address"
	// TimestampHeader is the unix time the signature was made at, as a
	// decimal string.
	TimestampHeader = "x-club-timestamp"
	// SignatureHeader is the personal-sign signature of the access message.
	// Value is an array of bytes.
	SignatureHeader = "x-club-signature-bin"
)
