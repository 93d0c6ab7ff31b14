package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess/monitoring"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 5 * time.Second

// MongoDB holds the details needed to connect to MongoDB.
type MongoDB struct {
	ConnectionString string
	Username         string
	Password         string
	Host             string
	Port             string
	Args             string
}

// GenerateConnectionString builds the connection string from its parts.
func (m *MongoDB) GenerateConnectionString() {
	cs := "mongodb+srv://"
	if m.Username != "" && m.Password != "" {
		cs += m.Username + ":" + m.Password + "@"
	} else if m.Username != "" {
		cs += m.Username + "@"
	}

	cs += m.Host

	if m.Port != "" {
		cs += ":" + m.Port
	}

	if m.Args != "" {
		cs += "/?" + m.Args
	}

	m.ConnectionString = cs
}

// Connect connects to MongoDB and pings the deployment before returning the client.
func (m *MongoDB) Connect(ctx context.Context) (client *mongo.Client, err error) {
	if m.ConnectionString == "" {
		m.GenerateConnectionString()
	}

	done := monitoring.Observe("mongo", "connect")
	defer func() { done(err) }()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(m.ConnectionString).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err = mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	return client, nil
}
