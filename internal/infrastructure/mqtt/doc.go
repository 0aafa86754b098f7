// Package mqtt connects padlink to an MQTT broker and keeps the
// connection useful across drops: subscriptions are restored on every
// reconnect, availability is retained on a dedicated topic, and an LWT
// flips it to offline if the process dies without a clean Close.
//
// MQTT is padlink's integration surface for external automations. The
// WebSocket surface serves interactive clients; MQTT serves machines.
// The Relay projects pad activity onto the topic tree: every derived
// press/release is published per button, serial connection transitions
// are published retained, and remote peers can open or close the serial
// device by publishing to the command topics.
//
//	pad bridge → Relay → MQTT Broker ↔ external integrations
//
// # Topic Tree
//
// Everything lives under a configurable prefix (default "padlink"):
//
//	<prefix>/event/<button>        derived events, {"type","button","ts"}
//	<prefix>/bridge/state          "connected"/"disconnected", retained
//	<prefix>/bridge/availability   "online"/"offline", retained, LWT
//	<prefix>/cmnd/connect          optional {"port","baud"} payload
//	<prefix>/cmnd/disconnect       payload ignored
//
// Brokers exposed beyond the local machine should enable TLS
// (broker.tls) and credentials (auth); payloads are plain JSON and rely
// on the transport for confidentiality.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	relay, err := mqtt.NewRelay(client, manager)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := relay.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	relay.PublishEvent("PRESS", 3)
package mqtt
