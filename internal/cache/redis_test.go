package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedis_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	c := NewRedis(db, 0)
	ctx := context.Background()

	mock.ExpectGet("kmbfeed:20160620_poi").SetVal("<plist/>")
	got, ok, err := c.Get(ctx, "20160620_poi")
	if err != nil || !ok || string(got) != "<plist/>" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}

	mock.ExpectGet("kmbfeed:missing").RedisNil()
	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("miss: ok=%v err=%v", ok, err)
	}

	mock.ExpectGet("kmbfeed:broken").SetErr(errors.New("connection reset"))
	if _, _, err := c.Get(ctx, "broken"); err == nil {
		t.Error("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedis_SetWithTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	c := NewRedis(db, 24*time.Hour)

	mock.ExpectSet("kmbfeed:20160620_poi", []byte("<plist/>"), 24*time.Hour).SetVal("OK")
	if err := c.Set(context.Background(), "20160620_poi", []byte("<plist/>")); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedis_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	c := NewRedis(db, 0)

	mock.ExpectDel("kmbfeed:k").SetVal(1)
	if err := c.Delete(context.Background(), "k"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedis_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	c := NewRedis(db, 0)

	mock.ExpectScan(0, "kmbfeed:*", scanCount).SetVal([]string{"kmbfeed:a", "kmbfeed:b"}, 7)
	mock.ExpectDel("kmbfeed:a", "kmbfeed:b").SetVal(2)
	mock.ExpectScan(7, "kmbfeed:*", scanCount).SetVal([]string{}, 0)

	if err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestOpenRedis_BadURL(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "not-a-redis-url", 0); err == nil {
		t.Error("expected parse error")
	}
}
