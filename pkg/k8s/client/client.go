/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package client builds the Kubernetes client used to publish harness
// documents as ConfigMaps.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// KubeconfigEnv overrides the kubeconfig path for the harness only.
const KubeconfigEnv = "CLIHARNESS_KUBECONFIG"

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns a process wide client, created on first use.
func GetKubeClient() (*kubernetes.Clientset, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("")
	})
	return cachedClient, cachedConfig, clientErr
}

// BuildKubeClient creates a client from kubeconfig. An empty path is
// resolved from CLIHARNESS_KUBECONFIG, KUBECONFIG, then ~/.kube/config;
// when none exist the in-cluster service account is used.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	if kubeconfig == "" {
		kubeconfig = ResolveKubeconfig()
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build kube config: %w", err)
	}
	config.UserAgent = "cliharness"

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// ResolveKubeconfig returns the kubeconfig path that would be used, or ""
// for in-cluster configuration.
func ResolveKubeconfig() string {
	for _, env := range []string{KubeconfigEnv, "KUBECONFIG"} {
		if p := os.Getenv(env); p != "" {
			return p
		}
	}
	p := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
