// Package mqtt connects the radio agent to an MQTT broker.
//
// Uplink publishes the payload of every cycle as a JSON Message on a data
// topic and turns ConfigMessage payloads received on a configuration topic
// into radio configuration changes:
//
//	opts := paho.NewClientOptions().AddBroker("tcp://localhost:1883")
//	client := paho.NewClient(opts)
//	if token := client.Connect(); token.Wait() && token.Error() != nil {
//	    return token.Error()
//	}
//	uplink := mqtt.New(client, func(o *mqtt.Options) {
//	    o.NodeID = "node-1"
//	})
//	if err := uplink.Subscribe(client); err != nil {
//	    return err
//	}
package mqtt
