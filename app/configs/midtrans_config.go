package configs

import (
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

func MidtransEnvironment(env ENV) midtrans.EnvironmentType {
	if env.MidtransEnv == "production" {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

// NewSnapClient returns nil when no server key is configured; online payments are then unavailable.
func NewSnapClient(env ENV) *snap.Client {
	if env.MidtransServerKey == "" {
		return nil
	}

	var client snap.Client
	client.New(env.MidtransServerKey, MidtransEnvironment(env))
	return &client
}
