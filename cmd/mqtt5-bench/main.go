// Command mqtt5-bench drives N concurrent publishers/subscribers against a
// broker with either this module's client or paho.mqtt.golang, selected by
// -impl, so the two can be compared under the same load shape. paho is isolated in
// this command's own go.mod (grounded on the teacher's cmd/paho-client) so
// the root module never depends on it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang-io/mqtt5"
	"github.com/golang-io/mqtt5/packet"
	"golang.org/x/sync/errgroup"
)

func main() {
	broker := flag.String("broker", "mqtt://127.0.0.1:1883", "broker URL")
	clients := flag.Int("clients", 100, "number of concurrent clients")
	impl := flag.String("impl", "mqtt5", "mqtt5 or paho")
	flag.Parse()

	switch *impl {
	case "paho":
		runPaho(*broker, *clients)
	default:
		runMqtt5(*broker, *clients)
	}
}

func runMqtt5(broker string, n int) {
	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		c := mqtt5.New(
			mqtt5.URL(broker),
			mqtt5.ClientID(fmt.Sprintf("bench-%d", i)),
			mqtt5.Subscribe(mqtt5.Subscription{
				Filter: "+", QoS: 1,
				Handler: func(topicName string, payload []byte, qos uint8) {
					log.Printf("recv: topic=%s qos=%d", topicName, qos)
				},
			}),
		)
		group.Go(func() error { return c.Run(ctx) })
		group.Go(func() error {
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			_, err := c.Connect(connectCtx)
			cancel()
			if err != nil {
				return err
			}
			return publishLoop(ctx, func(topic string, payload []byte) error {
				_, err := c.PublishAsync(ctx, &packet.Message{TopicName: topic, Content: payload}, 1, false, 0)
				return err
			}, i)
		})
	}
	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}

func runPaho(broker string, n int) {
	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		opts := paho.NewClientOptions().AddBroker(broker).SetClientID(fmt.Sprintf("bench-paho-%d", i))
		opts.SetDefaultPublishHandler(func(_ paho.Client, m paho.Message) {
			log.Printf("recv: topic=%s", m.Topic())
		})
		client := paho.NewClient(opts)
		group.Go(func() error {
			if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
				return tok.Error()
			}
			if tok := client.Subscribe("+", 1, nil); tok.Wait() && tok.Error() != nil {
				return tok.Error()
			}
			return publishLoop(ctx, func(topic string, payload []byte) error {
				tok := client.Publish(topic, 1, false, payload)
				tok.Wait()
				return tok.Error()
			}, i)
		})
	}
	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}

func publishLoop(ctx context.Context, publish func(topic string, payload []byte) error, i int) error {
	topic := fmt.Sprintf("topic-%d", i)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := publish(topic, []byte("hello world")); err != nil {
				log.Printf("publish: %v", err)
			}
		}
	}
}
