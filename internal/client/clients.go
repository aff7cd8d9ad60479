package client

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/krakosik/userhub/internal/dto"
	"google.golang.org/api/option"
)

type Clients interface {
	AuthClient() AuthClient
	RabbitMQClient() RabbitClient
	HTTPClient() HTTPClient
	Close() error
}

type clients struct {
	authClient   AuthClient
	rabbitClient RabbitClient
	httpClient   HTTPClient
}

func (c clients) AuthClient() AuthClient {
	return c.authClient
}

func (c clients) RabbitMQClient() RabbitClient {
	return c.rabbitClient
}

func (c clients) HTTPClient() HTTPClient {
	return c.httpClient
}

func (c clients) Close() error {
	return c.rabbitClient.Close()
}

func NewClients(ctx context.Context, cfg dto.Config) (Clients, error) {
	decodedFirebaseKey, err := cfg.DecodeFirebaseKey()
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(decodedFirebaseKey))
	if err != nil {
		return nil, fmt.Errorf("%w: firebase app: %v", dto.ErrUpstream, err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: firebase auth: %v", dto.ErrUpstream, err)
	}

	return &clients{
		authClient:   authClient,
		rabbitClient: NewRabbitMQClient(cfg),
		httpClient:   newHTTPClient(cfg.HealthTimeout),
	}, nil
}
