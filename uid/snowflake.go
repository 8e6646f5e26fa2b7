package uid

import (
	"database/sql/driver"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ID is a snowflake identifier. It is stored as an integer and rendered as
// base58 in JSON and URLs.
type ID snowflake.ID

var idGen *snowflake.Node

func init() {
	snowflake.Epoch = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	var err error

	//nolint:gosec // do not need cryptographic random value here
	idGen, err = snowflake.NewNode(rand.Int63n(1024))
	if err != nil {
		panic(err)
	}
}

// New returns an ID using a random NodeID. The NodeID is selected when the
// process starts, and won't change until the process is restarted.
func New() ID {
	return ID(idGen.Generate())
}

func Parse(b []byte) (ID, error) {
	id, err := snowflake.ParseBase58(b)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", string(b), err)
	}

	return ID(id), nil
}

func (u ID) String() string {
	return snowflake.ID(u).Base58()
}

func (u ID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *ID) UnmarshalText(b []byte) error {
	id, err := Parse(b)
	if err != nil {
		return err
	}

	*u = id

	return nil
}

func (u ID) Value() (driver.Value, error) {
	return int64(u), nil
}

func (u *ID) Scan(v interface{}) error {
	switch i := v.(type) {
	case int64:
		*u = ID(i)
	case nil:
		*u = 0
	default:
		return fmt.Errorf("cannot scan %T into uid.ID", v)
	}

	return nil
}

func (ID) GormDataType() string {
	return "bigint"
}
