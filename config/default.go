package config

// DefaultValues is the default configuration
const DefaultValues = `
[TxManager]
ConfirmTimeout = "120s"
PollInterval = "800ms"
MaxReplacements = 2
EstimatePadding = 1.2
MinGasLimit = 150000
ForcedGas = 0
MaxConcurrentSenders = 4
QueueSize = 128
StoragePath = ""
PersistenceFilename = ""
	[TxManager.FeePolicy]
	MinPriorityFeeGwei = 3.0
	MinMaxFeeGwei = 40.0
	BaseMultiplier = 3.0
	ReplacementFactor = 1.5
	PriorityBumpGwei = 1.0
	MaxFeeBumpGwei = 10.0
	MaxFeeLimitGwei = 0.0
	[TxManager.Etherman]
	ChainID = 0
		[TxManager.Etherman.RPC]
		URLs = []
		RequestTimeout = "10s"
		MaxRetries = 2
		RetryInterval = "200ms"
	[TxManager.Signers]
	PrivateKeys = []
	HexKeys = []
	[TxManager.Log]
	Environment = "development"
	Level = "info"
	Outputs = ["stderr"]

[LogFilter]
MaxChunk = 5000

[Metrics]
Enabled = false
Host = "0.0.0.0"
Port = 9091
`
