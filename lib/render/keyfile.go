package render

import (
	"fmt"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

// KeyFile wraps key material as a <name>.pem document. Ownership of the
// material moves to the returned reply; replies.Release wipes it.
func KeyFile(material *gateway.KeyMaterial) replies.File {
	return replies.File{
		Name: material.KeyName + ".pem",
		Data: material,
	}
}

// KeyCreatedText confirms a key pair download.
func KeyCreatedText(name string) string {
	return fmt.Sprintf("Key pair \"%s\" created and downloaded.", name)
}
