package verify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// OwnerRecordPrefix is the required prefix of the TXT record value.
const OwnerRecordPrefix = "dapp-owner="

// OwnerRecordName returns the fully qualified record name queried for a
// domain's ownership proof.
func OwnerRecordName(domain string) string {
	return dns.Fqdn("_dapp-owner." + strings.TrimSuffix(domain, "."))
}

// MatchesOwnerRecord reports whether a TXT record value names the given
// owner identity.
func MatchesOwnerRecord(record string, owner interfaces.Identity) bool {
	value, ok := strings.CutPrefix(strings.TrimSpace(record), OwnerRecordPrefix)
	if !ok {
		return false
	}

	claimed, err := interfaces.NewIdentityFromHex(value)
	if err != nil {
		return false
	}
	return claimed.Equal(owner)
}

// DomainVerifier resolves domain-ownership TXT records.
type DomainVerifier struct {
	client   *dns.Client
	resolver string
	log      *slog.Logger
}

// NewDomainVerifier creates a verifier using the given resolver address
// (host:port). An empty resolver selects the first nameserver from
// /etc/resolv.conf.
func NewDomainVerifier(resolver string, log *slog.Logger) (*DomainVerifier, error) {
	if resolver == "" {
		config, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("failed to load resolver configuration: %w", err)
		}
		if len(config.Servers) == 0 {
			return nil, fmt.Errorf("no nameservers configured")
		}
		resolver = net.JoinHostPort(config.Servers[0], config.Port)
	}

	return &DomainVerifier{
		client:   new(dns.Client),
		resolver: resolver,
		log:      log,
	}, nil
}

// VerifyOwner resolves the ownership record for domain and reports whether
// any TXT value names owner. A domain with no record verifies as false
// without error; resolution failures are errors.
func (v *DomainVerifier) VerifyOwner(ctx context.Context, domain string, owner interfaces.Identity) (bool, error) {
	name := OwnerRecordName(domain)

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeTXT)
	msg.RecursionDesired = true

	resp, _, err := v.client.ExchangeContext(ctx, msg, v.resolver)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	if resp.Rcode == dns.RcodeNameError {
		return false, nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		return false, fmt.Errorf("resolver returned %s for %s", dns.RcodeToString[resp.Rcode], name)
	}

	for _, rr := range resp.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		// Long values may be split into multiple strings.
		if MatchesOwnerRecord(strings.Join(txt.Txt, ""), owner) {
			v.log.Debug("Domain ownership verified",
				slog.String("domain", domain),
				slog.String("owner", owner.String()))
			return true, nil
		}
	}

	return false, nil
}
