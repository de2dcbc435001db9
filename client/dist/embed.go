// Package clientdist embeds the thin client JavaScript bundle.
package clientdist

import _ "embed"

// RoutekitJS is the thin client served at "/_routekit/client.js". It
// mirrors the browser history surface over the bridge websocket.
//
//go:embed routekit.js
var RoutekitJS []byte
