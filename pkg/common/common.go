package common

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"

	// DeviceKeyLen is the length of locally generated device keys.
	DeviceKeyLen = 8
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(time.Now().Unix() % 1023)
	if err != nil {
		snowflakeNode, _ = snowflake.NewNode(1)
	}
}

// UUIDint64 returns a snowflake int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a random uuid string.
func UUID() string {
	return uuid.NewString()
}

// GenerateDeviceKey produces an 8-character uppercase-alphanumeric device key.
// Uniqueness is enforced by the store's unique index; callers retry on
// collision.
func GenerateDeviceKey() string {
	return random.String(DeviceKeyLen, random.Uppercase, random.Numeric)
}
