package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards with the same return can be merged with ||
	//      if a { return err }
	//      if b { return err }
	//    => if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	// Same shape with continue inside loops
	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested for: a refactor hint, not always wrong
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// network keeps proxy and TLS settings flowing through httpclient.NetworkConfig.
func network(m dsl.Matcher) {
	m.Match(`os.Setenv($key, $_)`).
		Where(m["key"].Text.Matches(`(?i)^"(https?|no|all)_proxy"$`)).
		Report(`do not mutate proxy env vars; pass an httpclient.NetworkConfig to httpclient.New`)

	m.Match(`tls.Config{$*_, InsecureSkipVerify: true, $*_}`, `&tls.Config{$*_, InsecureSkipVerify: true, $*_}`).
		Where(!m.File().PkgPath.Matches(`/internal/infra/httpclient$`)).
		Report(`InsecureSkipVerify is only set by internal/infra/httpclient from TLS_INSECURE_SKIP_VERIFY`)
}

// logging keeps library packages on zap.
func logging(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `log.Printf($*_)`, `log.Println($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`use the injected *zap.Logger instead of printing`)
}
