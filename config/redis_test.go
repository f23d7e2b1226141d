package config

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestConnectRedis_SkippedInTestEnv(t *testing.T) {
	ResetConfigForTest()
	ResetRedisClientForTest()
	t.Setenv("APPENV", "test")

	client, err := ConnectRedis()

	assert.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, GetRedisClient())
}

func TestConnectRedis_SingletonDoesNotRerun(t *testing.T) {
	ResetConfigForTest()
	ResetRedisClientForTest()
	t.Setenv("APPENV", "test")

	first, err := ConnectRedis()
	assert.NoError(t, err)

	// Flipping the environment after the first call changes nothing: the
	// singleton is decided once per process.
	t.Setenv("APPENV", "production")
	second, err := ConnectRedis()

	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Nil(t, second)
}

func TestSetRedisClient_OverridesSingleton(t *testing.T) {
	ResetRedisClientForTest()

	db, _ := redismock.NewClientMock()
	defer db.Close()

	SetRedisClient(db)
	assert.Same(t, db, GetRedisClient())

	SetRedisClient(nil)
	assert.Nil(t, GetRedisClient())
}
