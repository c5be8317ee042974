package solanaix

import "github.com/gagliardetto/solana-go"

// Plan is an ordered instruction list ready to be compiled into one
// transaction, plus any extra keys that must co-sign beside the payer.
type Plan struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey

	AmountIn  uint64 // raw units spent
	MinOut    uint64 // raw units floor (lamports on sells)
	MaxIn     uint64 // lamports cap on curve buys
	Venue     string
	Mint      solana.PublicKey
	CreatedAt int64
}

// Signer returns the private key matching pub among the extra signers.
func (p *Plan) Signer(pub solana.PublicKey) *solana.PrivateKey {
	for i := range p.Signers {
		if p.Signers[i].PublicKey().Equals(pub) {
			return &p.Signers[i]
		}
	}
	return nil
}
