package storage

import (
	"github.com/vmihailenco/msgpack/v5"

	"neuroplatform/messaging"
)

// EncodeSpikeMessage serializes a SpikeMessage into its on-disk envelope.
// UID's MarshalBinary/UnmarshalBinary methods make the header round-trip
// through msgpack without custom field handling.
func EncodeSpikeMessage(msg messaging.SpikeMessage) ([]byte, error) {
	return msgpack.Marshal(msg)
}

// DecodeSpikeMessage is the inverse of EncodeSpikeMessage.
func DecodeSpikeMessage(data []byte) (messaging.SpikeMessage, error) {
	var msg messaging.SpikeMessage
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}

// EncodeImpactMessage serializes a SynapticImpactMessage into its on-disk
// envelope.
func EncodeImpactMessage(msg messaging.SynapticImpactMessage) ([]byte, error) {
	return msgpack.Marshal(msg)
}

// DecodeImpactMessage is the inverse of EncodeImpactMessage.
func DecodeImpactMessage(data []byte) (messaging.SynapticImpactMessage, error) {
	var msg messaging.SynapticImpactMessage
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}
