package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jobfiller/jobfiller/internal/resolver"
)

// scanScript walks the live form and returns one record per fillable
// control. Labels come from <label for=>, wrapping labels, aria-label,
// placeholder, or nearby text, in that order.
const scanScript = `() => {
	const nearbyText = (el) => {
		let node = el.parentElement;
		for (let depth = 0; node && depth < 3; depth++) {
			const text = (node.innerText || '').trim().replace(/\s+/g, ' ');
			if (text && text.length < 120) return text;
			node = node.parentElement;
		}
		return '';
	};

	const labelFor = (el) => {
		if (el.id) {
			const lbl = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lbl) return lbl.innerText.trim();
		}
		const wrap = el.closest('label');
		if (wrap) return wrap.innerText.trim();
		return el.getAttribute('aria-label') || el.placeholder || nearbyText(el) || el.name || '';
	};

	const els = document.querySelectorAll(
		'input:not([type="hidden"]):not([type="submit"]):not([type="button"]), textarea, select'
	);
	const out = [];
	for (const el of els) {
		if (!el.offsetParent || el.disabled || el.readOnly) continue;
		if (el.value && el.type !== 'radio' && el.type !== 'checkbox') continue;
		const info = {
			label: labelFor(el),
			name: el.name || '',
			id: el.id || '',
			type: el.tagName.toLowerCase() === 'select' ? 'select' : (el.type || 'text'),
			placeholder: el.placeholder || '',
			ariaLabel: el.getAttribute('aria-label') || '',
			nearbyText: nearbyText(el),
			options: [],
		};
		if (el.tagName.toLowerCase() === 'select') {
			info.options = Array.from(el.options).map(o => o.text.trim()).filter(Boolean);
		}
		out.push(info);
	}
	return out;
}`

// watchScript installs a MutationObserver that pings the exposed
// binding whenever new form controls enter the DOM
const watchScript = `() => {
	const observer = new MutationObserver((mutations) => {
		for (const m of mutations) {
			for (const node of m.addedNodes) {
				if (node.nodeType !== 1) continue;
				if (node.matches && (node.matches('input, select, textarea') ||
					(node.querySelector && node.querySelector('input, select, textarea')))) {
					window.__jfFieldsDiscovered();
					return;
				}
			}
		}
	});
	observer.observe(document.body, { childList: true, subtree: true });
}`

// captureScript collects fields the user has already filled, for
// learn mode
const captureScript = `() => {
	const labelFor = (el) => {
		if (el.id) {
			const lbl = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lbl) return lbl.innerText.trim();
		}
		const wrap = el.closest('label');
		if (wrap) return wrap.innerText.trim();
		return el.getAttribute('aria-label') || el.placeholder || el.name || '';
	};

	const els = document.querySelectorAll(
		'input:not([type="hidden"]):not([type="submit"]):not([type="button"]):not([type="password"]), textarea, select'
	);
	const out = [];
	for (const el of els) {
		if (el.disabled) continue;
		let value = el.value;
		if (el.type === 'checkbox' || el.type === 'radio') {
			if (!el.checked) continue;
			value = el.value === 'on' ? 'Yes' : el.value;
		}
		if (!value || !value.trim()) continue;
		const label = labelFor(el);
		if (!label) continue;
		out.push({ question: label, answer: value.trim() });
	}
	return out;
}`

// FilledField is one label/value pair captured from the live form
type FilledField struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CaptureFilled collects every field the form currently holds a value
// for, keyed by its visible label. Password inputs are never captured.
func (s *Session) CaptureFilled(ctx context.Context) ([]FilledField, error) {
	raw, err := s.page.Evaluate(captureScript)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	var fields []FilledField
	if err := remarshal(raw, &fields); err != nil {
		return nil, err
	}

	s.log.Infof("Captured %d filled fields", len(fields))
	return fields, nil
}

// Scan captures the current form inventory in document order
func (s *Session) Scan(ctx context.Context) ([]resolver.FieldDescriptor, error) {
	raw, err := s.page.Evaluate(scanScript)
	if err != nil {
		return nil, fmt.Errorf("form scan failed: %w", err)
	}

	var fields []resolver.FieldDescriptor
	if err := remarshal(raw, &fields); err != nil {
		return nil, err
	}

	s.log.Infof("Scanned %d fillable fields", len(fields))
	return fields, nil
}

// remarshal maps an untyped Evaluate result onto a typed slice via a
// JSON round-trip
func remarshal(raw, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode page result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode page result: %w", err)
	}
	return nil
}

// Watch wires dynamic field discovery: onDiscover fires whenever the
// page grows new form controls. The session controller debounces and
// suppresses the signal on its side.
func (s *Session) Watch(onDiscover func()) error {
	if err := s.page.ExposeFunction("__jfFieldsDiscovered", func(args ...interface{}) interface{} {
		onDiscover()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to expose discovery binding: %w", err)
	}
	if _, err := s.page.Evaluate(watchScript); err != nil {
		return fmt.Errorf("failed to install observer: %w", err)
	}
	return nil
}
