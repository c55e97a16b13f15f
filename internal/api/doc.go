// Package api provides the Paradex REST API client.
//
// REST endpoints:
//   - Testnet: https://api.testnet.paradex.trade/v1
//   - Prod: https://api.prod.paradex.trade/v1
//
// The recorder uses /system/config for environment discovery and /auth
// to refresh the bearer JWT used by the WebSocket stream.
package api
