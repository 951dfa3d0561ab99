// Package couchdb содержит хранилище заметок на CouchDB.
package couchdb

import (
	"context"
	"fmt"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb" // драйвер "couch"
	"go.uber.org/zap"

	"texter/pkg/logger"
)

const (
	driverName = "couch"

	indexDesignDoc = "texter-notes"
	indexName      = "owner-seq"

	logConnecting     = "connecting to couchdb"
	logDatabaseCreate = "creating couchdb database"
	logConnected      = "couchdb connection established"

	errCtxCreateClient = "failed to create couchdb client"
	errCtxCheckDB      = "failed to check couchdb database"
	errCtxCreateDB     = "failed to create couchdb database"
	errCtxCreateIndex  = "failed to create couchdb index"
)

// Connect создает клиента, при необходимости создает базу и индекс сортировки заметок.
func Connect(ctx context.Context, dsn, dbName string) (*kivik.Client, error) {
	log := logger.Log(ctx).With(zap.String("method", "couchdb.Connect"), zap.String("database", dbName))
	log.Info(ctx, logConnecting)

	client, err := kivik.New(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreateClient, err)
	}

	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", errCtxCheckDB, err)
	}

	if !exists {
		log.Info(ctx, logDatabaseCreate)
		if err := client.CreateDB(ctx, dbName); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: %w", errCtxCreateDB, err)
		}
	}

	if err := client.DB(dbName).CreateIndex(ctx, indexDesignDoc, indexName, ownerSeqIndex()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", errCtxCreateIndex, err)
	}

	log.Info(ctx, logConnected)
	return client, nil
}

func ownerSeqIndex() map[string]interface{} {
	return map[string]interface{}{
		"fields": []string{fieldUserID, fieldSeq},
	}
}
