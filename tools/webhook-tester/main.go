package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// webhook-tester signs installation webhooks with a local RSA key and posts
// them to a running server, either one-shot or as a sustained load test.
// Start the server with WIX_WEBHOOK_PUBLIC_KEY set to the printed public key.
func main() {
	targetURL := flag.String("url", "http://localhost:5101/wix-webhook", "Target webhook URL")
	keyFile := flag.String("key", "", "PEM-encoded RSA private key file (generated if empty)")
	instanceID := flag.String("instance", "", "Instance id to embed (random if empty)")
	concurrency := flag.Int("c", 1, "Number of concurrent workers")
	duration := flag.Duration("d", 0, "Duration of the load test (0 sends a single webhook)")
	rps := flag.Int("rps", 50, "Requests per second limit")
	flag.Parse()

	key := loadOrGenerateKey(*keyFile)

	if *duration == 0 {
		id := *instanceID
		if id == "" {
			id = uuid.NewString()
		}
		status, body := send(context.Background(), &http.Client{Timeout: 5 * time.Second}, *targetURL, key, id)
		log.Printf("instance %s -> %d %s", id, status, body)
		return
	}

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
					if err := limiter.Wait(ctx); err != nil {
						return
					}

					id := *instanceID
					if id == "" {
						id = uuid.NewString()
					}
					status, _ := send(ctx, client, *targetURL, key, id)
					if status == http.StatusOK {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
				}
			}
		}()
	}

	wg.Wait()
	log.Printf("Done. success=%d error=%d", successCount.Load(), errorCount.Load())
}

func send(ctx context.Context, client *http.Client, url string, key *rsa.PrivateKey, instanceID string) (int, string) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"data": fmt.Sprintf(`{"instanceId": %q}`, instanceID),
		"iat":  time.Now().Unix(),
	}).SignedString(key)
	if err != nil {
		log.Fatalf("failed to sign webhook token: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(token))
	if err != nil {
		return 0, err.Error()
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()

	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func loadOrGenerateKey(path string) *rsa.PrivateKey {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read key file: %v", err)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
		if err != nil {
			log.Fatalf("failed to parse private key: %v", err)
		}
		return key
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		log.Fatalf("failed to marshal public key: %v", err)
	}
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	log.Printf("Generated ephemeral key. Configure the server with:\nWIX_WEBHOOK_PUBLIC_KEY:\n%s", pub)

	return key
}
