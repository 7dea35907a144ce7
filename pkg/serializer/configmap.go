/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const managedByLabel = "app.kubernetes.io/managed-by"

// ParseConfigMapURI splits cm://namespace/name.
func ParseConfigMapURI(uri string) (string, string, error) {
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	ns, name, ok := strings.Cut(rest, "/")
	if !ok || ns == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q, expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return ns, name, nil
}

// ConfigMapWriter stores documents in a ConfigMap, creating or updating it.
type ConfigMapWriter struct {
	client    kubernetes.Interface
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a writer for namespace/name. Table output is
// stored as YAML.
func NewConfigMapWriter(c kubernetes.Interface, namespace, name string, format Format) *ConfigMapWriter {
	if format == FormatTable || format.IsUnknown() {
		format = FormatYAML
	}
	return &ConfigMapWriter{client: c, namespace: namespace, name: name, format: format}
}

func dataKey(f Format) string {
	return ConfigMapDataKey + "." + f.Ext()
}

// Serialize implements Serializer.
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	b, err := Encode(w.format, data)
	if err != nil {
		return err
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      w.name,
			Namespace: w.namespace,
			Labels:    map[string]string{managedByLabel: "cliharness"},
		},
		Data: map[string]string{dataKey(w.format): string(b)},
	}

	api := w.client.CoreV1().ConfigMaps(w.namespace)
	_, err = api.Create(ctx, cm, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		existing, getErr := api.Get(ctx, w.name, metav1.GetOptions{})
		if getErr != nil {
			return fmt.Errorf("failed to get ConfigMap %s/%s: %w", w.namespace, w.name, getErr)
		}
		existing.Data = cm.Data
		if existing.Labels == nil {
			existing.Labels = map[string]string{}
		}
		existing.Labels[managedByLabel] = "cliharness"
		_, err = api.Update(ctx, existing, metav1.UpdateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to write ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	slog.Debug("wrote ConfigMap", "namespace", w.namespace, "name", w.name, "key", dataKey(w.format))
	return nil
}

// ReadConfigMap decodes the document stored by ConfigMapWriter into v.
func ReadConfigMap(ctx context.Context, c kubernetes.Interface, namespace, name string, v any) error {
	cm, err := c.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	for _, f := range []Format{FormatYAML, FormatJSON} {
		content, ok := cm.Data[dataKey(f)]
		if !ok {
			continue
		}
		r, err := NewReader(f, bytes.NewBufferString(content))
		if err != nil {
			return err
		}
		return r.Deserialize(v)
	}
	return fmt.Errorf("ConfigMap %s/%s has no %s key", namespace, name, ConfigMapDataKey)
}
