package metadb

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/chameleon/src/anon"
)

const ANONYMIZER_SALT_KEY = "anonymizer_salt"

type saltRecord struct {
	Salt string `json:"salt"`
}

// LoadOrCreateSalt returns the salt stored in the state dir, generating and
// storing one on first use, so later runs against the same state dir
// reproduce earlier output.
func LoadOrCreateSalt(m *MetaDB) ([]byte, error) {
	var stored saltRecord
	found, err := m.GetJsonObject(nil, ANONYMIZER_SALT_KEY, &stored)
	if err != nil {
		return nil, fmt.Errorf("error reading stored salt: %w", err)
	}
	if found && stored.Salt != "" {
		salt, err := anon.ParseSaltHex(stored.Salt)
		if err != nil {
			return nil, fmt.Errorf("stored salt: %w", err)
		}
		log.Infof("reusing stored salt, fingerprint %s", anon.SaltFingerprint(salt))
		return salt, nil
	}

	salt, err := anon.GenerateSalt(anon.SALT_SIZE)
	if err != nil {
		return nil, err
	}
	err = UpdateJsonObjectInMetaDB(m, ANONYMIZER_SALT_KEY, func(record *saltRecord) {
		record.Salt = fmt.Sprintf("%x", salt)
	})
	if err != nil {
		return nil, fmt.Errorf("error storing salt: %w", err)
	}
	log.Infof("stored new salt, fingerprint %s", anon.SaltFingerprint(salt))
	return salt, nil
}
