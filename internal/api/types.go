package api

// BridgedToken describes one L1/L2 bridged asset.
type BridgedToken struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	L1TokenAddress  string `json:"l1_token_address"`
	L1BridgeAddress string `json:"l1_bridge_address"`
	L2TokenAddress  string `json:"l2_token_address"`
	L2BridgeAddress string `json:"l2_bridge_address"`
}

// SystemConfig is the exchange configuration returned by /system/config.
type SystemConfig struct {
	StarknetGatewayURL        string         `json:"starknet_gateway_url"`
	StarknetFullnodeRPCURL    string         `json:"starknet_fullnode_rpc_url"`
	StarknetChainID           string         `json:"starknet_chain_id"`
	BlockExplorerURL          string         `json:"block_explorer_url"`
	ParaclearAddress          string         `json:"paraclear_address"`
	ParaclearDecimals         int            `json:"paraclear_decimals"`
	ParaclearAccountProxyHash string         `json:"paraclear_account_proxy_hash"`
	ParaclearAccountHash      string         `json:"paraclear_account_hash"`
	OracleAddress             string         `json:"oracle_address"`
	BridgedTokens             []BridgedToken `json:"bridged_tokens"`
	L1CoreContractAddress     string         `json:"l1_core_contract_address"`
	L1OperatorAddress         string         `json:"l1_operator_address"`
	L1ChainID                 string         `json:"l1_chain_id"`
	LiquidationFee            string         `json:"liquidation_fee"`
}

// AuthResult is the response from /auth.
type AuthResult struct {
	JWTToken string `json:"jwt_token"`
}
