package domain

// BlockRecord es una fila de block_data.csv tal como la devuelve la API de payloads.
type BlockRecord struct {
	Payment float64 // ETH pagado al proposer
	Slot    int64
	Block   int64
	TxCount int64
	GasUsed int64
}
