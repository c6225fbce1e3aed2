// Package kafka provides methods for initiating kafka-topics for the app and a kafka readiness-probing
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// InitTopics creates the event topics, waiting out broker hiccups.
func InitTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}

	for _, t := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("InitTopics canceled or timed out")
			return
		default:
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			log.Printf("Failed to run topics creation request: %v\nWait %v before next try...", err, delay)
			time.Sleep(delay)
			continue
		}

		pending := len(resp.Errors)
		for topic, topicErr := range resp.Errors {
			switch {
			case topicErr == nil, errors.Is(topicErr, kafkago.TopicAlreadyExists):
				pending--
			default:
				log.Printf("Topic %q creation error: %v", topic, topicErr)
			}
		}

		if pending == 0 {
			log.Println("All topics created successfully!")
			return
		}
	}
}

// WaitReady blocks until the broker accepts connections.
func WaitReady(brokerAddr string, delay time.Duration) {
	for {
		conn, err := kafkago.Dial("tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				log.Println("Failed to close connection after probing Kafka readiness:", errConn)
			}
			break
		}
		log.Printf("Kafka not ready, retrying in %v...", delay)
		time.Sleep(delay)
	}
	log.Println("Kafka is ready!")
}
