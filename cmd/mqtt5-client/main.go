package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-io/mqtt5"
	"github.com/golang-io/mqtt5/packet"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	c := mqtt5.New(
		mqtt5.URL("mqtt://127.0.0.1:1883"),
		mqtt5.Subscribe(
			mqtt5.Subscription{Filter: "+", QoS: 1, Handler: onMessage},
			mqtt5.Subscription{Filter: "a/b/c", QoS: 1, Handler: onMessage},
		),
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return c.Run(ctx) })

	group.Go(func() error {
		if _, err := c.Connect(ctx); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			_, err := c.PublishAsync(ctx, &packet.Message{
				TopicName: "12345",
				Content:   []byte(time.Now().Format("2006-01-02 15:04:05")),
			}, 1, false, 0)
			if err != nil {
				log.Printf("publish: %v", err)
			}
			time.Sleep(time.Second)
		}
	})

	group.Go(func() error {
		defer cancel()
		sign := make(chan os.Signal, 1)
		signal.Notify(sign, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-sign:
			return fmt.Errorf("got signal: %s", sig)
		}
	})

	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}

func onMessage(topicName string, payload []byte, qos uint8) {
	log.Printf("on: topic=%s qos=%d payload=%s", topicName, qos, payload)
}
