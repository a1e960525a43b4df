package safeurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL_BlocksUnsafeTargets(t *testing.T) {
	blocked := []string{
		"http://localhost/evil",
		"http://localhost:8080/evil",
		"http://127.0.0.1/evil",
		"http://127.0.0.1:3000/internal",
		"http://[::1]/evil",
		"http://10.0.0.1/internal",
		"http://10.255.255.255/internal",
		"http://172.16.0.1/internal",
		"http://172.31.255.255/internal",
		"http://192.168.1.1/internal",
		"http://169.254.169.254/latest/meta-data/",
		"http://169.254.1.1/",
		"file:///etc/passwd",
		"ftp://ftp.example.com/file",
	}
	for _, raw := range blocked {
		_, err := ValidateURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestValidateURL_AllowsPublicHosts(t *testing.T) {
	allowed := []string{
		"https://example.com/image.jpg",
		"http://example.com/image.png",
		"https://imagedelivery.net/abc123/image.jpg",
		"https://gateway.pinata.cloud/ipfs/Qm123abc",
		"https://8.8.8.8/resource",
	}
	for _, raw := range allowed {
		got, err := ValidateURL(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, got)
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"127.0.0.1", "127.255.255.255",
		"10.0.0.1", "10.255.255.255",
		"172.16.0.1", "172.31.255.255",
		"192.168.0.1", "192.168.255.255",
		"169.254.169.254", "169.254.1.1",
		"::1", "0.0.0.0",
	}
	for _, ip := range private {
		assert.True(t, IsPrivateIP(ip), ip)
	}

	public := []string{
		"8.8.8.8", "1.1.1.1", "142.250.185.238",
		"172.15.0.1", "172.32.0.1",
	}
	for _, ip := range public {
		assert.False(t, IsPrivateIP(ip), ip)
	}
}

func TestIsPrivateIP_FailsClosed(t *testing.T) {
	// Unparseable input is treated as private so fetches never proceed on
	// something we could not classify.
	assert.True(t, IsPrivateIP("not.an.ip"))
	assert.True(t, IsPrivateIP(""))
}

func TestIsValidIPFSCID(t *testing.T) {
	assert.True(t, IsValidIPFSCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"))
	assert.True(t, IsValidIPFSCID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"))

	assert.False(t, IsValidIPFSCID("InvalidCID"))
	assert.False(t, IsValidIPFSCID("Xm123456789"))
	assert.False(t, IsValidIPFSCID("Qm123"))
	assert.False(t, IsValidIPFSCID("bafy123"))
	assert.False(t, IsValidIPFSCID(""))
}
