package partition

import "k8s.io/klog/v2"

// earlyAvoids handles device-avoidance directives: for every AVOID OP
// directive, any node whose description matches the directive's pattern is
// marked via its mutable metadata channel (model.OpNode.MarkAvoidDevice),
// and its hosting Group's avoided_devices mirrors the same mark. For AVOID
// PATTERN, only RMSNorm is currently supported; any other pattern name —
// known to the registry or not — is warned and skipped. Unknown patterns
// never abort the run.
func (s *Snapshot) earlyAvoids() {
	for _, d := range s.ctx.Avoids {
		switch d.Kind {
		case AvoidOp:
			for _, g := range s.sortedGroupsByID() {
				if g.InitialNode().Description() == d.Pattern {
					g.InitialNode().MarkAvoidDevice(d.Device)
					g.Avoid(d.Device)
				}
			}
		case AvoidPattern:
			if d.Pattern != "RMSNorm" {
				klog.Warningf("partition: earlyAvoids: unsupported AVOID pattern %q, skipping", d.Pattern)
				continue
			}
			matcher, ok := s.registry.Lookup(d.Pattern)
			if !ok {
				klog.Warningf("partition: earlyAvoids: unknown AVOID pattern %q, skipping", d.Pattern)
				continue
			}
			for _, n := range matcher.Match(s.graph) {
				n.MarkAvoidDevice(d.Device)
				if g := s.nodeToGroup[n]; g != nil {
					g.Avoid(d.Device)
				}
			}
		}
	}
}

// earlyRegroup handles isolation directives: for every ISOLATE directive,
// the named matcher is invoked, every matched node is tagged via its mutable
// metadata channel (model.OpNode.MarkIsolateTag), and its hosting Group's
// isolated_tag mirrors the same tag. Unknown patterns are warned and skipped.
func (s *Snapshot) earlyRegroup() {
	for _, d := range s.ctx.Isolates {
		matcher, ok := s.registry.Lookup(d.Pattern)
		if !ok {
			klog.Warningf("partition: earlyRegroup: unknown ISOLATE pattern %q, skipping", d.Pattern)
			continue
		}
		for _, n := range matcher.Match(s.graph) {
			n.MarkIsolateTag(d.Tag)
			if g := s.nodeToGroup[n]; g != nil {
				g.SetIsolatedTag(d.Tag)
			}
		}
	}
}
